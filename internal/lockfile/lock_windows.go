//go:build windows

package lockfile

import (
	"os"

	"golang.org/x/sys/windows"
)

// openExclusive opens path with a zero share mode, which makes Windows
// itself deny every other open (read, write, or delete) until the handle
// is closed. The file must already exist; locking never creates files.
func openExclusive(path string) (*os.File, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	h, err := windows.CreateFile(
		p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // no sharing
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, err
	}

	return os.NewFile(uintptr(h), path), nil
}

// closeExclusive closes the handle; on Windows that alone releases the
// exclusive access.
func closeExclusive(f *os.File) {
	_ = f.Close()
}
