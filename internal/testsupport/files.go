package testsupport

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// FakeDevice creates dir/sr0 as a regular file standing in for an optical
// drive node. It resolves like a device path, but ioctl and mount fail on it.
func FakeDevice(t testing.TB, dir string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, "sr0")
	if err := os.WriteFile(path, []byte{0}, 0o644); err != nil {
		t.Fatalf("create fake device: %v", err)
	}
	return path
}

// WriteTree creates root and writes each slash-separated relative path with
// its contents, in lexical order.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", root, err)
	}
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(files[name]), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}
