package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestExecCapturesOutput(t *testing.T) {
	tool := writeScript(t, `echo "out $1"; echo "warn" 1>&2; exit 0`)

	res, err := New().Run(context.Background(), tool, "arg")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "out arg" {
		t.Fatalf("unexpected stdout %q", res.Stdout)
	}
	if res.Output() != "warn" {
		t.Fatalf("expected stderr preferred, got %q", res.Output())
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", res.ExitCode)
	}
}

func TestExecReportsExitCode(t *testing.T) {
	tool := writeScript(t, `echo "no disc in drive" 1>&2; exit 3`)

	_, err := New().Run(context.Background(), tool)
	if err == nil {
		t.Fatal("expected error")
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T", err)
	}
	if ExitCode(err) != 3 {
		t.Fatalf("expected exit code 3, got %d", ExitCode(err))
	}
	if Output(err) != "no disc in drive" {
		t.Fatalf("unexpected output %q", Output(err))
	}
	if !strings.Contains(err.Error(), "status 3: no disc in drive") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestExecMissingBinary(t *testing.T) {
	_, err := New().Run(context.Background(), "clearly-not-present-binary")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if ExitCode(err) != -1 {
		t.Fatalf("expected -1 for missing binary, got %d", ExitCode(err))
	}
	if !strings.Contains(err.Error(), "failed to start") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestExitCodeForForeignError(t *testing.T) {
	if ExitCode(errors.New("boom")) != -1 {
		t.Fatal("expected -1 for non-runner error")
	}
	if Output(errors.New("boom")) != "" {
		t.Fatal("expected empty output for non-runner error")
	}
}
