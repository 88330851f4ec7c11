// Package lockfile provides process-wide exclusive file locking for
// mediakeep.
//
// # Registry
//
// A Registry maps file paths to open exclusive handles. The download
// pipeline acquires a path before writing so that an in-progress file is
// invisible to a concurrent retention sweep; the sweeper probes the same
// registry defensively before deleting.
//
//	locks := lockfile.NewRegistry()
//	defer locks.Close()
//
//	if locks.Acquire("/downloads/show.mp3") {
//	    defer locks.Release("/downloads/show.mp3")
//	    // write the file
//	}
//
// # Semantics
//
// Acquire never returns an error: a lock that cannot be taken (missing
// file, held by another actor, permission denied) is a normal outcome
// reported as false, which the caller retries or skips. Release is
// idempotent and safe to call from cleanup code even when the lock was
// never held.
//
// The OS-level exclusive lock lives as long as the open handle. The
// registry is its sole owner; callers only ever see boolean outcomes.
// Cross-process coordination relies entirely on the OS primitive (flock
// on unix, share-mode-zero opens on Windows).
package lockfile
