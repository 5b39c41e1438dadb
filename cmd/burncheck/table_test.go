package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"Device", "Media", "Exit"}, [][]string{{"/dev/sr0", "cd"}}, []columnAlignment{alignLeft, alignLeft, alignRight})
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rendered lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[1], "DEVICE") || !strings.Contains(lines[3], "/dev/sr0") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestRenderTableNoHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestRenderFieldTableOmitsHeader(t *testing.T) {
	out := renderFieldTable([][]string{{"Result", "PASS"}, {"Files", "3"}})
	if strings.Contains(out, "FIELD") || strings.Contains(out, "VALUE") {
		t.Fatalf("field table must not render a header:\n%s", out)
	}
	if !strings.Contains(out, "Result") || !strings.Contains(out, "PASS") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}
