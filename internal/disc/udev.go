package disc

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pilebones/go-udev/netlink"

	"burncheck/internal/logging"
)

// MediaWatcher listens for udev media-change events on one drive while the
// pipeline waits for remount. Events are logged and counted; they never end
// the wait on their own, since only the mount table decides readability.
type MediaWatcher struct {
	logger *slog.Logger
}

// NewMediaWatcher returns a watcher that logs through logger.
func NewMediaWatcher(logger *slog.Logger) *MediaWatcher {
	return &MediaWatcher{logger: logging.NewComponentLogger(logger, "udev")}
}

// MediaWatch is a running watch started by MediaWatcher.Watch.
type MediaWatch struct {
	device string
	logger *slog.Logger
	events atomic.Int64

	stopOnce sync.Once
	conn     *netlink.UEventConn
	quit     chan struct{}
	done     chan struct{}
}

// Watch connects to the kernel uevent socket and starts logging media events
// for device. Stop must be called to release the socket.
func (w *MediaWatcher) Watch(ctx context.Context, device string) (*MediaWatch, error) {
	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return nil, err
	}

	watch := newMediaWatch(device, w.logger)
	watch.conn = conn
	watch.quit = make(chan struct{})
	watch.done = make(chan struct{})

	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, mediaMatcher())

	go func() {
		defer close(watch.done)
		for {
			select {
			case <-ctx.Done():
				close(monitorQuit)
				return
			case <-watch.quit:
				close(monitorQuit)
				return
			case ev := <-queue:
				watch.handleEvent(ev)
			case err := <-errs:
				watch.logger.Debug("udev monitor error", logging.Error(err))
			}
		}
	}()
	return watch, nil
}

func newMediaWatch(device string, logger *slog.Logger) *MediaWatch {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MediaWatch{device: device, logger: logger}
}

// Stop ends the watch and returns the number of matching events seen. It is
// safe on a nil watch and safe to call more than once.
func (m *MediaWatch) Stop() int {
	if m == nil {
		return 0
	}
	m.stopOnce.Do(func() {
		if m.quit != nil {
			close(m.quit)
			<-m.done
		}
		if m.conn != nil {
			_ = m.conn.Close()
		}
	})
	return int(m.events.Load())
}

func (m *MediaWatch) handleEvent(ev netlink.UEvent) {
	devname := eventDeviceName(ev)
	if devname == "" || !sameDevice(devname, m.device) {
		return
	}
	m.events.Add(1)
	m.logger.Info("media event",
		logging.String(logging.FieldEventType, "udev_media_change"),
		logging.Device(devname),
		logging.String("action", string(ev.Action)),
		logging.String("media", ev.Env["ID_CDROM_MEDIA"]),
		logging.String("fs_label", ev.Env["ID_FS_LABEL"]),
	)
}

// mediaMatcher matches block change/add events from CD-ROM class devices.
func mediaMatcher() netlink.Matcher {
	action := "change|add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "block",
			"ID_CDROM":  "1",
		},
	})
	return rules
}

// eventDeviceName gets the device path from a uevent.
func eventDeviceName(ev netlink.UEvent) string {
	if devname := ev.Env["DEVNAME"]; devname != "" {
		if !strings.HasPrefix(devname, "/") {
			devname = "/dev/" + devname
		}
		return devname
	}

	devpath := ev.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	return "/dev/" + parts[len(parts)-1]
}
