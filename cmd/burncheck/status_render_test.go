package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"burncheck/internal/deps"
	"burncheck/internal/disc"
	"burncheck/internal/history"
	"burncheck/internal/preflight"
	"burncheck/internal/testsupport"
)

func TestReportLineRender(t *testing.T) {
	tests := []struct {
		name     string
		line     reportLine
		colorize bool
		want     string
	}{
		{"plain", reportLine{"Tray", verdictFail, "tray_open"}, false, "  Tray:                  [ERROR] tray_open"},
		{"no detail", reportLine{"Tray", verdictNote, ""}, false, "  Tray:                  [INFO]"},
		{"colored", reportLine{"Tray", verdictPass, "disc_ok"}, true, ansiGreen + "  Tray:                  [OK] disc_ok" + ansiReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.line.render(tt.colorize); got != tt.want {
				t.Fatalf("render mismatch\n got: %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestReportSections(t *testing.T) {
	rep := &report{}
	rep.section("Tools")
	rep.add(reportLine{"mkisofs", verdictPass, "Ready"})
	rep.section(" Paths ")
	want := strings.Join([]string{
		"== Tools ==",
		"-----------",
		"  mkisofs:               [OK] Ready",
		"",
		"== Paths ==",
		"-----------",
	}, "\n")
	if got := rep.String(); got != want {
		t.Fatalf("report mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestToolLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "CD writer", Command: "wodim", Available: false, Detail: `binary "wodim" not found`},
		{Name: "ISO authoring", Command: "mkisofs", Path: "/usr/bin/mkisofs", Available: true, Detail: "using mkisofs in place of genisoimage"},
		{Name: "lsblk", Command: "lsblk", Available: false, Optional: true},
	}
	lines := toolLines(statuses)
	want := []reportLine{
		{"Summary", verdictFail, "1 required tool(s) missing"},
		{"CD writer", verdictFail, `binary "wodim" not found`},
		{"ISO authoring", verdictPass, "Ready (/usr/bin/mkisofs); using mkisofs in place of genisoimage"},
		{"lsblk", verdictWarn, "not available"},
		{"Install", verdictWarn, "wodim"},
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %+v, want %+v", i, lines[i], want[i])
		}
	}
}

func TestToolLinesAllAvailable(t *testing.T) {
	lines := toolLines([]deps.Status{{Name: "lsblk", Command: "lsblk", Path: "/usr/bin/lsblk", Available: true}})
	if len(lines) != 2 {
		t.Fatalf("expected summary and one tool line, got %v", lines)
	}
	if lines[0].verdict != verdictPass || lines[1].detail != "Ready (/usr/bin/lsblk)" {
		t.Fatalf("unexpected lines %v", lines)
	}
}

func TestCheckLine(t *testing.T) {
	tests := []struct {
		result preflight.Result
		want   verdict
	}{
		{preflight.Result{Name: "Lock directory", Passed: true, Detail: "/locks (read/write ok)"}, verdictPass},
		{preflight.Result{Name: "Optical drive", Detail: "/dev/sr0 (error: not a block device)"}, verdictFail},
	}
	for _, tt := range tests {
		got := checkLine(tt.result)
		if got.verdict != tt.want || got.label != tt.result.Name || got.detail != tt.result.Detail {
			t.Fatalf("checkLine(%+v) = %+v", tt.result, got)
		}
	}
}

func TestDriveStateLines(t *testing.T) {
	tests := []struct {
		name string
		got  reportLine
		want reportLine
	}{
		{"tray error", trayLine(0, errors.New("ioctl failed")), reportLine{"Tray", verdictWarn, "ioctl failed"}},
		{"mount error", mountLine("", false, errors.New("read mounts")), reportLine{"Mounted", verdictWarn, "read mounts"}},
		{"mounted", mountLine("/media/disc", true, nil), reportLine{"Mounted", verdictNote, "/media/disc"}},
		{"not mounted", mountLine("", false, nil), reportLine{"Mounted", verdictNote, "no"}},
		{"media", mediaLine(disc.DiscInfo{Label: "BACKUP", FSType: "udf"}, nil), reportLine{"Media", verdictNote, "label BACKUP, filesystem udf"}},
		{"blank media", mediaLine(disc.DiscInfo{}, nil), reportLine{"Media", verdictNote, "label (none), filesystem blank or unreadable"}},
		{"media error", mediaLine(disc.DiscInfo{}, errors.New("lsblk timed out")), reportLine{"Media", verdictWarn, "lsblk timed out"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Fatalf("got %+v, want %+v", tt.got, tt.want)
			}
		})
	}
}

func TestHistoryLine(t *testing.T) {
	tests := []struct {
		stats history.Stats
		want  reportLine
	}{
		{history.Stats{}, reportLine{"History", verdictNote, "no recorded runs"}},
		{history.Stats{Total: 3, Passed: 2, Failed: 1}, reportLine{"History", verdictWarn, "2 passed, 1 failed of 3 runs"}},
		{history.Stats{Total: 2, Passed: 2}, reportLine{"History", verdictPass, "2 passed, 0 failed of 2 runs"}},
	}
	for _, tt := range tests {
		if got := historyLine(tt.stats); got != tt.want {
			t.Fatalf("historyLine(%+v) = %+v, want %+v", tt.stats, got, tt.want)
		}
	}
}

type staticTable struct {
	mountPoint string
}

func (s staticTable) Lookup(string) (string, bool, error) {
	return s.mountPoint, s.mountPoint != "", nil
}

func TestDriveLinesOnNonDevice(t *testing.T) {
	device := testsupport.FakeDevice(t, t.TempDir())
	fake := testsupport.NewFakeRunner().On("lsblk", testsupport.FakeResponse{
		Stdout: `LABEL="OPTICAL_TEST" FSTYPE="iso9660" MOUNTPOINT="/media/disc"` + "\n",
	})

	lines := driveLines(context.Background(), fake, staticTable{mountPoint: "/media/disc"}, device)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %v", lines)
	}
	if lines[0].verdict != verdictWarn {
		t.Fatalf("expected tray warning on a regular file, got %+v", lines[0])
	}
	if lines[1].detail != "/media/disc" || lines[2].detail != "label OPTICAL_TEST, filesystem iso9660" {
		t.Fatalf("unexpected lines %v", lines)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}
