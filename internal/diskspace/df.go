package diskspace

import (
	"errors"
	"os/exec"
	"strconv"
	"strings"
)

// DFProber shells out to the POSIX disk-free utility. It exists as the
// fallback for platforms or filesystems where the native statfs call
// fails; the fixed `-P` output format keeps the parsing stable across
// df implementations.
type DFProber struct{}

// FreeBytes runs `df -P` against dir and parses its output.
func (DFProber) FreeBytes(dir string) (int64, error) {
	out, err := exec.Command("df", "-P", dir).Output()
	if err != nil {
		return 0, err
	}
	return ParseDFOutput(out)
}

// ParseDFOutput extracts the available capacity, in bytes, from `df -P`
// output:
//
//	Filesystem     1024-blocks     Used Available Capacity Mounted on
//	/dev/sda1        498876412 12345678   5242880      71% /
//
// The header line is skipped and the fourth whitespace-separated field
// of the data line (available blocks) is multiplied by 1024. The
// function is deliberately strict: any deviation from the expected table
// shape is an error, which the caller resolves via the unknown sentinel.
func ParseDFOutput(out []byte) (int64, error) {
	lines := splitNonEmptyLines(string(out))
	if len(lines) < 2 {
		return 0, errors.New("diskspace: df output has no data line")
	}

	fields := strings.Fields(lines[1])
	if len(fields) < 4 {
		return 0, errors.New("diskspace: df data line has too few fields")
	}

	blocks, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return 0, err
	}
	if blocks < 0 {
		return 0, errors.New("diskspace: df reported negative capacity")
	}

	return blocks * 1024, nil
}

func splitNonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
