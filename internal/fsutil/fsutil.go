package fsutil

import (
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	// Characters rejected by at least one supported platform:
	// < > : " / \ | ? * and control characters (0x00-0x1f).
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// SanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("Show: Part 1/2") // Returns "Show_ Part 1_2"
//	SanitizeFileName("Episode...")     // Returns "Episode"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does. The source file must exist and be readable.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}

// EnsureDir creates a directory and all parent directories if they don't
// exist. Directories are created with mode 0755. If the directory already
// exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
