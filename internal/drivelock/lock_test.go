package drivelock

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestPathFor(t *testing.T) {
	tests := []struct {
		device string
		want   string
	}{
		{"/dev/sr0", "sr0.lock"},
		{"/dev/disk/by-id/usb-drive", "disk_by-id_usb-drive.lock"},
		{"/", "device.lock"},
	}
	for _, tt := range tests {
		if got := filepath.Base(PathFor("/locks", tt.device)); got != tt.want {
			t.Fatalf("PathFor(%q) = %q, want %q", tt.device, got, tt.want)
		}
	}
}

func TestAcquireIsExclusivePerDevice(t *testing.T) {
	dir := t.TempDir()

	first, err := Acquire(dir, "/dev/sr0")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := Acquire(dir, "/dev/sr0"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	other, err := Acquire(dir, "/dev/sr1")
	if err != nil {
		t.Fatalf("second drive should lock independently: %v", err)
	}
	defer other.Release()

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := Acquire(dir, "/dev/sr0")
	if err != nil {
		t.Fatalf("expected lock after release: %v", err)
	}
	_ = again.Release()

	var nilLock *Lock
	if err := nilLock.Release(); err != nil {
		t.Fatalf("nil release: %v", err)
	}
}
