// Package fsutil provides file system utilities for mediakeep.
//
// This package contains functions for:
//   - Recursive file enumeration with name-pattern filtering
//   - Filename sanitization for cross-platform compatibility
//   - File copying
//   - Directory creation
//
// # File Enumeration
//
// FindFiles walks a directory tree and returns regular files whose base
// name matches a glob pattern. Unreadable subtrees are skipped rather
// than aborting the walk, so a single permission error never hides the
// rest of the tree:
//
//	files, err := fsutil.FindFiles("/downloads", "*.mp3")
//
// A root that does not exist yields an empty result, not an error.
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := fsutil.SanitizeFileName("Show: Part 1/2") // Returns "Show_ Part 1_2"
package fsutil
