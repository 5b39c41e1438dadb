package disc

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"burncheck/internal/runner"
)

// DiscInfo is the filesystem metadata lsblk reports for inserted media.
type DiscInfo struct {
	Label      string
	FSType     string
	MountPoint string
}

// ReadDiscInfo returns the label, filesystem, and mount point lsblk reports
// for device.
func ReadDiscInfo(ctx context.Context, r runner.Runner, device string, timeout time.Duration) (DiscInfo, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		return DiscInfo{}, fmt.Errorf("no device specified")
	}
	if r == nil {
		r = runner.New()
	}

	lsblkCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		lsblkCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := r.Run(lsblkCtx, "lsblk", "-P", "-o", "LABEL,FSTYPE,MOUNTPOINT", device)
	if err != nil {
		return DiscInfo{}, fmt.Errorf("failed to run lsblk: %w", err)
	}

	data := ParseLSBLK(res.Stdout)
	return DiscInfo{Label: data["LABEL"], FSType: data["FSTYPE"], MountPoint: data["MOUNTPOINT"]}, nil
}

// ParseLSBLK parses lsblk -P output and returns the first non-empty row.
func ParseLSBLK(output string) map[string]string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if data := parseLSBLKKeyValueLine(line); len(data) > 0 {
			return data
		}
	}
	return map[string]string{}
}

// parseLSBLKKeyValueLine splits KEY="value" pairs; values may contain spaces.
func parseLSBLKKeyValueLine(line string) map[string]string {
	result := make(map[string]string)
	for line != "" {
		key, rest, ok := strings.Cut(line, "=\"")
		if !ok {
			break
		}
		value, tail, ok := strings.Cut(rest, "\"")
		if !ok {
			break
		}
		result[strings.TrimSpace(key)] = value
		line = strings.TrimSpace(tail)
	}
	return result
}
