package lockfile

import (
	"os"
	"path/filepath"
	"testing"
)

func lockTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "output.mp3")
	if err := os.WriteFile(path, []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAcquireRelease(t *testing.T) {
	r := NewRegistry()
	defer r.Close()
	path := lockTarget(t)

	if !r.Acquire(path) {
		t.Fatal("Acquire on an unlocked file should succeed")
	}
	if !r.Held(path) {
		t.Error("Held should report true after Acquire")
	}

	if !r.Release(path) {
		t.Error("Release of a tracked lock should return true")
	}
	if r.Held(path) {
		t.Error("Held should report false after Release")
	}
}

func TestAcquire_MissingFile(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	if r.Acquire(filepath.Join(t.TempDir(), "nope.mp3")) {
		t.Error("Acquire should fail for a missing file")
	}
}

func TestAcquire_AlreadyHeld(t *testing.T) {
	r := NewRegistry()
	defer r.Close()
	path := lockTarget(t)

	if !r.Acquire(path) {
		t.Fatal("first Acquire should succeed")
	}
	if r.Acquire(path) {
		t.Error("second Acquire on the same path should fail")
	}
}

func TestAcquire_ContendedAcrossActors(t *testing.T) {
	// Two registries stand in for two independent writers. The OS-level
	// lock is per open handle, so they contend even within one process.
	holder := NewRegistry()
	defer holder.Close()
	other := NewRegistry()
	defer other.Close()
	path := lockTarget(t)

	if !holder.Acquire(path) {
		t.Fatal("holder should acquire the lock")
	}
	if other.Acquire(path) {
		t.Fatal("contending Acquire should fail while the lock is held")
	}

	if !holder.Release(path) {
		t.Fatal("Release should succeed for the holder")
	}
	if !other.Acquire(path) {
		t.Error("Acquire should succeed once the previous holder released")
	}
}

func TestRelease_Idempotent(t *testing.T) {
	r := NewRegistry()
	defer r.Close()
	path := lockTarget(t)

	if !r.Acquire(path) {
		t.Fatal("Acquire should succeed")
	}

	if !r.Release(path) {
		t.Error("first Release should return true")
	}
	// Second Release: nothing tracked, but the file still exists.
	if !r.Release(path) {
		t.Error("second Release should return true for an existing file")
	}
}

func TestRelease_UntrackedMissingPath(t *testing.T) {
	r := NewRegistry()
	defer r.Close()

	if r.Release(filepath.Join(t.TempDir(), "never-existed.mp3")) {
		t.Error("Release of an untracked, missing path should return false")
	}
}

func TestRelease_UntrackedExistingPath(t *testing.T) {
	r := NewRegistry()
	defer r.Close()
	path := lockTarget(t)

	if !r.Release(path) {
		t.Error("Release of an untracked but existing path should return true")
	}
}

func TestClose_ReleasesAll(t *testing.T) {
	r := NewRegistry()
	a := lockTarget(t)
	b := lockTarget(t)

	if !r.Acquire(a) || !r.Acquire(b) {
		t.Fatal("both Acquires should succeed")
	}

	r.Close()

	if r.Held(a) || r.Held(b) {
		t.Error("Close should discard every tracked handle")
	}

	other := NewRegistry()
	defer other.Close()
	if !other.Acquire(a) {
		t.Error("lock should be free again after Close")
	}
}
