package lockfile

import (
	"os"
	"sync"
)

// Registry tracks exclusive file locks held by this process.
//
// The zero value is not usable; create instances with NewRegistry.
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*os.File
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]*os.File),
	}
}

// Acquire opens path for exclusive read/write access, denying any other
// opener (including other processes) until released.
//
// On success the open handle is recorded under path and Acquire returns
// true. On failure (file missing, already locked by another actor,
// permission denied) it returns false. Failure is expected and
// recoverable; it is never escalated to an error.
func (r *Registry) Acquire(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handles[path]; ok {
		return false
	}

	f, err := openExclusive(path)
	if err != nil {
		return false
	}

	r.handles[path] = f
	return true
}

// Release closes and discards the handle tracked for path, releasing the
// OS-level lock.
//
// When path is not tracked by this registry, Release is a no-op that
// reports whether the path exists on disk: false when it does not, true
// when it exists but was locked elsewhere (or not at all). Calling
// Release twice in a row is safe.
func (r *Registry) Release(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.handles[path]
	if !ok {
		_, err := os.Stat(path)
		return err == nil
	}

	closeExclusive(f)
	delete(r.handles, path)
	return true
}

// Held reports whether this registry currently tracks a lock for path.
func (r *Registry) Held(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[path]
	return ok
}

// Close releases every lock tracked by the registry. Intended for
// process shutdown; the registry remains usable afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for path, f := range r.handles {
		closeExclusive(f)
		delete(r.handles, path)
	}
}
