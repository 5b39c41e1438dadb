package main

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"burncheck/internal/pipeline"
)

func TestSoakStopsAfterMaxRuns(t *testing.T) {
	var calls atomic.Int32
	runFn := func(context.Context) (*pipeline.RunState, error) {
		calls.Add(1)
		now := time.Now()
		return &pipeline.RunState{StartedAt: now, FinishedAt: now.Add(time.Minute), State: pipeline.StateCleaned}, nil
	}

	var out bytes.Buffer
	opts := soakOptions{maxRuns: 1, immediate: true}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := soak(ctx, "@every 1h", opts, runFn, &out, nil); err != nil {
		t.Fatalf("soak: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one run, got %d", calls.Load())
	}
	if !strings.Contains(out.String(), "run 1: PASS") || !strings.Contains(out.String(), "1 of 1 runs passed") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestSoakReturnsLastFailure(t *testing.T) {
	runFn := func(context.Context) (*pipeline.RunState, error) {
		return &pipeline.RunState{}, &pipeline.StageError{Kind: pipeline.KindBurn, Stage: pipeline.StateBurned}
	}
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := soak(ctx, "@every 1h", soakOptions{maxRuns: 1, immediate: true}, runFn, &out, nil)
	if pipeline.ExitCode(err) != 15 {
		t.Fatalf("expected burn exit code, got %v", err)
	}
	if !strings.Contains(out.String(), "FAIL exit 15") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestSoakRejectsBadSchedule(t *testing.T) {
	err := soak(context.Background(), "not a schedule", soakOptions{}, nil, &bytes.Buffer{}, nil)
	if err == nil || !strings.Contains(err.Error(), "invalid soak schedule") {
		t.Fatalf("expected schedule error, got %v", err)
	}
}
