package retention

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mediakeep/mediakeep/internal/config"
	"github.com/mediakeep/mediakeep/internal/lockfile"
)

// eventRecorder collects events; safe for the parallel search path.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) has(level Level, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Level == level && e.Path == path {
			return true
		}
	}
	return false
}

func newTestSweeper(t *testing.T, settings *config.Settings) (*Sweeper, *eventRecorder) {
	t.Helper()
	locks := lockfile.NewRegistry()
	t.Cleanup(locks.Close)

	rec := &eventRecorder{}
	s := NewSweeper(settings, locks, rec.record)
	return s, rec
}

// agedFile creates a file under dir whose last-modified time lies age in
// the past relative to now.
func agedFile(t *testing.T, dir, name string, now time.Time, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		t.Fatal(err)
	}
	stamp := now.Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatal(err)
	}
	return path
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestSweep_DeletesOnlyExpiredFiles(t *testing.T) {
	now := time.Now()
	root := t.TempDir()
	old := agedFile(t, root, "a.log", now, days(40))
	fresh := agedFile(t, root, "b.log", now, days(2))

	s, _ := newTestSweeper(t, config.DefaultSettings())
	s.now = func() time.Time { return now }

	report, err := s.Sweep(context.Background(), Request{
		Root:          root,
		Patterns:      []string{"*.log"},
		RetentionDays: 30,
	})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if report.Candidates != 1 || report.Deleted != 1 {
		t.Errorf("report = %+v, want 1 candidate deleted", report)
	}
	if exists(old) {
		t.Error("expired file should be deleted")
	}
	if !exists(fresh) {
		t.Error("fresh file should survive the sweep")
	}
}

func TestSweep_StrictCutoffBoundary(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	root := t.TempDir()
	// Exactly at the cutoff instant: must NOT qualify.
	atCutoff := agedFile(t, root, "at-cutoff.mp3", now, days(30))
	justOver := agedFile(t, root, "just-over.mp3", now, days(30)+time.Second)

	s, _ := newTestSweeper(t, config.DefaultSettings())
	s.now = func() time.Time { return now }

	report, err := s.Sweep(context.Background(), Request{
		Root:          root,
		Patterns:      []string{"*.mp3"},
		RetentionDays: 30,
	})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if !exists(atCutoff) {
		t.Error("file modified exactly at the cutoff must survive (strictly older than)")
	}
	if exists(justOver) {
		t.Error("file one second past the cutoff should be deleted")
	}
	if report.Deleted != 1 {
		t.Errorf("report.Deleted = %d, want 1", report.Deleted)
	}
}

func TestSweep_Idempotent(t *testing.T) {
	now := time.Now()
	root := t.TempDir()
	agedFile(t, root, "old.mp3", now, days(60))

	s, _ := newTestSweeper(t, config.DefaultSettings())
	s.now = func() time.Time { return now }
	req := Request{Root: root, Patterns: []string{"*.mp3"}, RetentionDays: 30}

	first, err := s.Sweep(context.Background(), req)
	if err != nil {
		t.Fatalf("first Sweep: %v", err)
	}
	if first.Deleted != 1 {
		t.Fatalf("first sweep deleted %d files, want 1", first.Deleted)
	}

	second, err := s.Sweep(context.Background(), req)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if second.Candidates != 0 || second.Deleted != 0 {
		t.Errorf("second sweep = %+v, want an empty candidate set", second)
	}
}

func TestSweep_ZeroRetentionDays(t *testing.T) {
	now := time.Now()
	root := t.TempDir()
	path := agedFile(t, root, "anything.mp4", now, time.Minute)

	s, _ := newTestSweeper(t, config.DefaultSettings())
	s.now = func() time.Time { return now }

	report, err := s.Sweep(context.Background(), Request{
		Root:          root,
		Patterns:      []string{"*.mp4"},
		RetentionDays: 0,
	})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Deleted != 1 || exists(path) {
		t.Error("retentionDays = 0 should qualify every file modified before now")
	}
}

func TestSweep_MissingRoot(t *testing.T) {
	s, _ := newTestSweeper(t, config.DefaultSettings())

	report, err := s.Sweep(context.Background(), Request{
		Root:          filepath.Join(t.TempDir(), "does-not-exist"),
		Patterns:      []string{"*.mp3"},
		RetentionDays: 30,
	})
	if err != nil {
		t.Fatalf("Sweep on a missing root should not fail: %v", err)
	}
	if report.Candidates != 0 {
		t.Errorf("report.Candidates = %d, want 0", report.Candidates)
	}
}

func TestSweep_PatternWithoutMatches(t *testing.T) {
	now := time.Now()
	root := t.TempDir()
	old := agedFile(t, root, "old.mp3", now, days(45))

	s, _ := newTestSweeper(t, config.DefaultSettings())
	s.now = func() time.Time { return now }

	report, err := s.Sweep(context.Background(), Request{
		Root:          root,
		Patterns:      []string{"*.flac", "*.mp3"},
		RetentionDays: 30,
	})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Deleted != 1 || exists(old) {
		t.Error("a zero-match pattern must not prevent other patterns from sweeping")
	}
}

func TestSweep_SkipsLockedFiles(t *testing.T) {
	now := time.Now()
	root := t.TempDir()
	locked := agedFile(t, root, "in-progress.mp3", now, days(45))
	free := agedFile(t, root, "finished.mp3", now, days(45))

	// A second registry stands in for the download pipeline's writer.
	writer := lockfile.NewRegistry()
	defer writer.Close()
	if !writer.Acquire(locked) {
		t.Fatal("writer should hold the in-progress file")
	}

	s, rec := newTestSweeper(t, config.DefaultSettings())
	s.now = func() time.Time { return now }
	req := Request{Root: root, Patterns: []string{"*.mp3"}, RetentionDays: 30}

	report, err := s.Sweep(context.Background(), req)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if report.SkippedLocked != 1 {
		t.Errorf("report.SkippedLocked = %d, want 1", report.SkippedLocked)
	}
	if !exists(locked) {
		t.Error("locked file must survive the sweep")
	}
	if exists(free) {
		t.Error("unlocked expired file should be deleted")
	}
	if !rec.has(LevelWarning, locked) {
		t.Error("skipping a locked file should emit a warning with the path")
	}

	// After the writer releases, the next sweep reclaims the file.
	writer.Release(locked)
	report, err = s.Sweep(context.Background(), req)
	if err != nil {
		t.Fatalf("Sweep after release: %v", err)
	}
	if report.Deleted != 1 || exists(locked) {
		t.Error("released file should be deleted by the next sweep")
	}
}

func TestSweep_ParallelMatchesSequential(t *testing.T) {
	now := time.Now()

	buildTree := func(t *testing.T) string {
		root := t.TempDir()
		agedFile(t, root, "a.mp3", now, days(40))
		agedFile(t, root, "b.mp4", now, days(50))
		agedFile(t, root, filepath.Join("nested", "c.mp3"), now, days(60))
		agedFile(t, root, "fresh.mp3", now, days(1))
		// Overlapping patterns must not produce duplicate candidates.
		agedFile(t, root, "d.m4a", now, days(70))
		return root
	}

	collectPaths := func(t *testing.T, parallel bool) []string {
		settings := config.DefaultSettings()
		settings.ParallelCleanup = parallel
		settings.MaxCleanupWorkers = 2
		settings.CleanupDryRun = true

		s, _ := newTestSweeper(t, settings)
		s.now = func() time.Time { return now }

		root := buildTree(t)
		report, err := s.Sweep(context.Background(), Request{
			Root:          root,
			Patterns:      []string{"*.mp3", "*.mp4", "*.m4a", "*.m*"},
			RetentionDays: 30,
		})
		if err != nil {
			t.Fatalf("Sweep: %v", err)
		}

		var rel []string
		for _, res := range report.Results {
			p, err := filepath.Rel(root, res.Path)
			if err != nil {
				t.Fatal(err)
			}
			rel = append(rel, p)
		}
		return rel
	}

	sequential := collectPaths(t, false)
	parallel := collectPaths(t, true)

	if len(sequential) != len(parallel) {
		t.Fatalf("sequential found %v, parallel found %v", sequential, parallel)
	}
	for i := range sequential {
		if sequential[i] != parallel[i] {
			t.Errorf("candidate %d differs: sequential %q, parallel %q", i, sequential[i], parallel[i])
		}
	}
}

func TestSweep_DryRun(t *testing.T) {
	now := time.Now()
	root := t.TempDir()
	old := agedFile(t, root, "old.mp3", now, days(45))

	settings := config.DefaultSettings()
	settings.CleanupDryRun = true

	s, _ := newTestSweeper(t, settings)
	s.now = func() time.Time { return now }

	report, err := s.Sweep(context.Background(), Request{
		Root:          root,
		Patterns:      []string{"*.mp3"},
		RetentionDays: 30,
	})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if report.Candidates != 1 || report.Deleted != 0 {
		t.Errorf("report = %+v, want 1 candidate and no deletions", report)
	}
	if len(report.Results) != 1 || report.Results[0].Outcome != OutcomeWouldDelete {
		t.Errorf("results = %+v, want a single would-delete", report.Results)
	}
	if !exists(old) {
		t.Error("dry run must not delete files")
	}
}

func TestSweepFile_Streaming(t *testing.T) {
	now := time.Now()
	root := t.TempDir()

	tests := []struct {
		name          string
		age           time.Duration
		retentionDays int
		wantDeleted   bool
	}{
		{"older than retention", days(10), 5, true},
		{"younger than retention", days(10), 20, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := agedFile(t, root, tt.name+".mp3", now, tt.age)

			s, _ := newTestSweeper(t, config.DefaultSettings())
			s.now = func() time.Time { return now }

			report, err := s.SweepFile(context.Background(), path, tt.retentionDays)
			if err != nil {
				t.Fatalf("SweepFile: %v", err)
			}

			if tt.wantDeleted {
				if report.Deleted != 1 || exists(path) {
					t.Error("file older than retention should be deleted")
				}
			} else {
				if report.Deleted != 0 || !exists(path) {
					t.Error("file younger than retention should be kept")
				}
			}
		})
	}
}

func TestSweepFile_MissingFile(t *testing.T) {
	s, _ := newTestSweeper(t, config.DefaultSettings())

	report, err := s.SweepFile(context.Background(), filepath.Join(t.TempDir(), "gone.mp3"), 5)
	if err != nil {
		t.Fatalf("SweepFile on a missing file should not fail: %v", err)
	}
	if report.Candidates != 0 {
		t.Errorf("report = %+v, want empty", report)
	}
}

func TestSweep_CancelledContext(t *testing.T) {
	now := time.Now()
	root := t.TempDir()
	agedFile(t, root, "old.mp3", now, days(45))

	s, _ := newTestSweeper(t, config.DefaultSettings())
	s.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Sweep(ctx, Request{Root: root, Patterns: []string{"*.mp3"}, RetentionDays: 30})
	if err == nil {
		t.Error("Sweep with a cancelled context should surface ctx.Err()")
	}
}
