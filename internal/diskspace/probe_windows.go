//go:build windows

package diskspace

import (
	"errors"
	"math"
	"os/exec"

	"golang.org/x/sys/windows"
)

func platformProbers() []Prober {
	return []Prober{VolumeProber{}, DirListProber{}}
}

// VolumeProber reads free capacity via GetDiskFreeSpaceEx. The API
// answers for drive-letter roots and for UNC shares alike, so it is
// tried first for every path shape.
type VolumeProber struct{}

// FreeBytes returns the bytes available to the calling user on the
// volume backing dir.
func (VolumeProber) FreeBytes(dir string) (int64, error) {
	p, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0, err
	}

	var free uint64
	if err := windows.GetDiskFreeSpaceEx(p, &free, nil, nil); err != nil {
		return 0, err
	}
	if free > math.MaxInt64 {
		free = math.MaxInt64
	}
	return int64(free), nil
}

// DirListProber shells out to a directory listing of a network share's
// root and parses the free-bytes summary line. It only answers for
// UNC paths, as the fallback when the native API cannot reach the share.
type DirListProber struct{}

// FreeBytes lists the share root of dir and parses the summary.
func (DirListProber) FreeBytes(dir string) (int64, error) {
	if !IsNetworkSharePath(dir) {
		return 0, errors.New("diskspace: not a network share path")
	}

	out, err := exec.Command("cmd", "/c", "dir", ShareRoot(dir)).Output()
	if err != nil {
		return 0, err
	}
	return ParseDirSummary(out)
}
