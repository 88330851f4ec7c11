//go:build unix

package lockfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// openExclusive opens path read/write and takes a non-blocking exclusive
// flock on it. The file must already exist; locking never creates files.
func openExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

// closeExclusive drops the flock and closes the handle.
func closeExclusive(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	_ = f.Close()
}
