package disc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMountTable is the kernel's view of this process's mounts.
const DefaultMountTable = "/proc/self/mounts"

// MountTable answers "is this device mounted, and where".
type MountTable interface {
	Lookup(device string) (mountPoint string, mounted bool, err error)
}

// ProcMounts reads a /proc/mounts formatted file.
type ProcMounts struct {
	Path string
}

// NewProcMounts returns a MountTable backed by /proc/self/mounts.
func NewProcMounts() ProcMounts {
	return ProcMounts{Path: DefaultMountTable}
}

// Lookup returns the first mount point whose source device resolves to device.
func (p ProcMounts) Lookup(device string) (string, bool, error) {
	path := p.Path
	if path == "" {
		path = DefaultMountTable
	}
	f, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("open mounts: %w", err)
	}
	defer f.Close()

	requested, _ := filepath.EvalSymlinks(device)
	if requested == "" {
		requested = device
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		mountDevice := decodeMountField(fields[0])
		mountPath := decodeMountField(fields[1])

		canonical, _ := filepath.EvalSymlinks(mountDevice)
		if canonical == "" {
			canonical = mountDevice
		}

		if sameDevice(requested, canonical) {
			return mountPath, true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("scan mounts: %w", err)
	}
	return "", false, nil
}

// decodeMountField reverses the octal escapes the kernel applies to
// whitespace and backslashes in /proc/mounts.
func decodeMountField(field string) string {
	replacer := strings.NewReplacer(
		"\\040", " ",
		"\\011", "\t",
		"\\012", "\n",
		"\\134", "\\",
	)
	return replacer.Replace(field)
}
