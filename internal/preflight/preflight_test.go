package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"burncheck/internal/deps"
	"burncheck/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if CheckDirectoryAccess("test", f).Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDeviceRejectsRegularFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "sr0")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if CheckDevice(f).Passed {
		t.Fatal("expected regular file to fail the block device check")
	}
	if CheckDevice(filepath.Join(t.TempDir(), "absent")).Passed {
		t.Fatal("expected missing device to fail")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSampleFiles(map[string]string{"a.txt": "a"}))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(cfg, "")
	if len(results) != 3 {
		t.Fatalf("expected 3 results without a device, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}

	if err := os.RemoveAll(cfg.SampleDatasetDir()); err != nil {
		t.Fatal(err)
	}
	failed := Failed(RunAll(cfg, filepath.Join(t.TempDir(), "sr9")))
	if len(failed) != 2 || failed[0].Name != "Sample dataset" || failed[1].Name != "Optical drive" {
		t.Fatalf("unexpected failures %+v", failed)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("mkisofs", "wodim", "growisofs", "mount", "umount", "eject"))
	t.Setenv("PATH", filepath.Join(testsupport.BaseDir(cfg), "bin"))

	statuses := CheckSystemDeps(cfg)
	if missing := deps.MissingRequired(statuses); len(missing) != 0 {
		t.Fatalf("expected all required tools, missing %+v", missing)
	}
	if statuses[0].Command != "mkisofs" {
		t.Fatalf("expected mkisofs fallback, got %+v", statuses[0])
	}
	if statuses[len(statuses)-1].Available {
		t.Fatal("lsblk was not stubbed and should be unavailable")
	}
}
