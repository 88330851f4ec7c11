// Package diskspace reports remaining free capacity for the filesystem
// backing a directory.
//
// The download pipeline calls FreeSpace immediately before committing to
// a large write; disk state is externally mutable, so results are never
// cached.
//
//	free := diskspace.FreeSpace("/downloads")
//	if free < settings.MinFreeMegabytes {
//	    // hold off on new downloads
//	}
//
// # Strategies
//
// Probing is a small strategy chain selected once at startup, native OS
// API first, external utility second:
//   - unix: statfs(2), falling back to parsing `df -P` output
//   - windows: GetDiskFreeSpaceEx, falling back to the free-bytes summary
//     line of a `dir` listing for network shares
//
// # Unknown sentinel
//
// When every strategy fails, FreeSpace returns UnknownFreeMegabytes
// rather than an error. Callers must treat the sentinel as "unknown, do
// not block on this value", never as a real capacity figure: capacity
// checks degrade to "assume space available" instead of stalling all
// work.
package diskspace
