package diskspace

import (
	"errors"
	"strconv"
	"strings"
)

// IsNetworkSharePath reports whether path is a UNC-style network share
// path (\\host\share\...).
func IsNetworkSharePath(path string) bool {
	return strings.HasPrefix(path, `\\`)
}

// ShareRoot reduces a UNC path to its \\host\share root. Free capacity
// is a property of the share, not of any subdirectory, so listings are
// taken against the root. Non-UNC paths are returned unchanged.
func ShareRoot(path string) string {
	if !IsNetworkSharePath(path) {
		return path
	}

	trimmed := strings.ReplaceAll(strings.TrimPrefix(path, `\\`), "/", `\`)
	parts := strings.SplitN(trimmed, `\`, 3)
	if len(parts) < 2 || parts[1] == "" {
		return path
	}

	return `\\` + parts[0] + `\` + parts[1]
}

var digitSeparators = strings.NewReplacer(",", "", ".", "", "\u00a0", "")

// ParseDirSummary extracts the free-bytes figure from the summary of a
// `dir` listing:
//
//	              12 File(s)      1,234,567 bytes
//	               2 Dir(s)  110,743,884,288 bytes free
//
// Lines are scanned from the end so the trailing "bytes free" summary
// wins over per-file byte counts. Thousands separators are stripped
// before parsing, which tolerates the common locale variants. Any output
// without a recognizable summary line is an error, resolved by the
// caller via the unknown sentinel.
func ParseDirSummary(out []byte) (int64, error) {
	lines := strings.Split(string(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		fields := strings.Fields(lines[i])
		for j := len(fields) - 2; j >= 0; j-- {
			if !strings.EqualFold(fields[j+1], "bytes") {
				continue
			}
			n, err := strconv.ParseInt(digitSeparators.Replace(fields[j]), 10, 64)
			if err != nil || n < 0 {
				continue
			}
			return n, nil
		}
	}
	return 0, errors.New("diskspace: no free-bytes summary line in dir output")
}
