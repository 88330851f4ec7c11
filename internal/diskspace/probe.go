package diskspace

// UnknownFreeMegabytes is returned when no probing strategy could
// determine free capacity. It is deliberately absurd (roughly 9.5 PB) so
// that threshold checks treat the volume as unbounded instead of full.
const UnknownFreeMegabytes int64 = 9_999_999_999

const megabyte = 1 << 20

// Prober queries the free capacity, in bytes, of the filesystem backing
// a directory. Implementations exist per platform family; they return an
// error when the directory's shape is not theirs to answer for.
type Prober interface {
	FreeBytes(dir string) (int64, error)
}

// probers is the platform strategy chain, selected once at startup.
var probers = platformProbers()

// FreeSpace returns the free capacity of the volume backing dir, in
// whole megabytes (floor division).
//
// The result is never negative. When no strategy can answer (malformed
// or inaccessible path, misbehaving platform utilities) it returns
// UnknownFreeMegabytes. Every call re-queries the OS.
func FreeSpace(dir string) int64 {
	return freeSpaceMB(dir, probers)
}

func freeSpaceMB(dir string, chain []Prober) int64 {
	for _, p := range chain {
		free, err := p.FreeBytes(dir)
		if err != nil || free < 0 {
			continue
		}
		return free / megabyte
	}
	return UnknownFreeMegabytes
}
