package disc

import (
	"testing"

	"github.com/pilebones/go-udev/netlink"
)

func TestEventDeviceName(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"devname", map[string]string{"DEVNAME": "/dev/sr0"}, "/dev/sr0"},
		{"bare devname", map[string]string{"DEVNAME": "sr1"}, "/dev/sr1"},
		{"devpath", map[string]string{"DEVPATH": "/devices/pci0000:00/ata2/host1/block/sr0"}, "/dev/sr0"},
		{"empty", map[string]string{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eventDeviceName(netlink.UEvent{Env: tt.env}); got != tt.want {
				t.Fatalf("eventDeviceName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMediaWatchCountsMatchingEvents(t *testing.T) {
	w := newMediaWatch("/dev/sr0", nil)

	w.handleEvent(netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"DEVNAME": "/dev/sr0", "ID_CDROM_MEDIA": "1"}})
	w.handleEvent(netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{"DEVNAME": "/dev/sr1"}})
	w.handleEvent(netlink.UEvent{Action: netlink.ADD, Env: map[string]string{}})

	if got := w.Stop(); got != 1 {
		t.Fatalf("expected 1 matching event, got %d", got)
	}
	if got := w.Stop(); got != 1 {
		t.Fatalf("expected Stop to be idempotent, got %d", got)
	}
}

func TestMediaWatchNilStop(t *testing.T) {
	var w *MediaWatch
	if w.Stop() != 0 {
		t.Fatal("expected nil watch to report zero events")
	}
}
