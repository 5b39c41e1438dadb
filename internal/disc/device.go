package disc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ResolveDevice checks that path exists and returns its canonical form with
// every symlink resolved (/dev/cdrom -> /dev/sr0).
func ResolveDevice(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("no device specified")
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("device %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolve device %s: %w", path, err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("resolve device %s: %w", path, err)
	}
	return abs, nil
}

// sameDevice reports whether a and b name the same device: equal cleaned
// paths, or device nodes sharing a major:minor number.
func sameDevice(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if a == b {
		return true
	}
	rdevA, okA := deviceNumber(a)
	rdevB, okB := deviceNumber(b)
	return okA && okB && rdevA == rdevB
}

// deviceNumber returns the rdev of a block or character device node.
func deviceNumber(path string) (uint64, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, false
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFBLK, unix.S_IFCHR:
		return uint64(st.Rdev), true
	default:
		return 0, false
	}
}
