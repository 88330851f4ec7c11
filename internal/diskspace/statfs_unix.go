//go:build unix

package diskspace

import "golang.org/x/sys/unix"

func platformProbers() []Prober {
	return []Prober{StatfsProber{}, DFProber{}}
}

// StatfsProber reads free capacity from statfs(2). This is the native
// strategy on unix; no external process is involved.
type StatfsProber struct{}

// FreeBytes returns the capacity available to unprivileged callers
// (f_bavail, not f_bfree) on the filesystem containing dir.
func (StatfsProber) FreeBytes(dir string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}
