package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FindFiles recursively enumerates regular files under root whose base
// name matches pattern (filepath.Match syntax).
//
// Behavior:
//   - Directories and non-regular files are never returned.
//   - Unreadable subtrees are silently skipped.
//   - A root that does not exist (or is not a directory) yields an empty
//     result and no error.
//
// Returns an error only when pattern itself is malformed.
func FindFiles(root, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry: skip it, keep walking the rest.
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			files = append(files, path)
		}
		return nil
	})

	return files, nil
}
