package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"burncheck/internal/config"
	"burncheck/internal/history"
	"burncheck/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	device     string
}

func setupCLITestEnv(t *testing.T, mutate func(*config.Config)) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t,
		testsupport.WithSampleFiles(map[string]string{
			"a.txt":        "alpha\n",
			"b.txt":        "bravo\n",
			"nested/c.txt": "charlie\n",
		}),
		testsupport.WithStubbedBinaries(),
	)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	if mutate != nil {
		mutate(cfg)
	}

	configPath := filepath.Join(base, "burncheck.toml")
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(configPath, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	device := testsupport.FakeDevice(t, base)
	return &cliTestEnv{cfg: cfg, configPath: configPath, device: device}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", e.configPath}, args...)
	code := execute(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecuteRejectsSingleArgument(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	code, _, stderr := env.run(t, "/dev/sr0")
	if code != 1 {
		t.Fatalf("expected usage exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "expected <device> <media-kind>") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestExecuteMissingDeviceIsUsageError(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	code, _, stderr := env.run(t, filepath.Join(t.TempDir(), "absent"), "cd")
	if code != 1 || !strings.Contains(stderr, "absent") {
		t.Fatalf("expected usage error naming the device, got %d %q", code, stderr)
	}
}

func TestRunPreflightBlocksRegularFileDevice(t *testing.T) {
	env := setupCLITestEnv(t, nil)
	code, _, stderr := env.run(t, "run", env.device, "cd")
	if code != 1 || !strings.Contains(stderr, "preflight failed") {
		t.Fatalf("expected preflight failure, got %d %q", code, stderr)
	}
	if _, err := os.Stat(env.cfg.Paths.WorkDir); !os.IsNotExist(err) {
		t.Fatal("workspace must not be created when preflight fails")
	}
}

func TestRunUnsupportedMediaExitCode(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	code, stdout, stderr := env.run(t, env.device, "laserdisc", "--skip-preflight")
	if code != 14 {
		t.Fatalf("expected exit 14, got %d (stderr %q)", code, stderr)
	}
	if !strings.Contains(stderr, "burn") {
		t.Fatalf("expected failing stage in stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "UnsupportedMediaError") {
		t.Fatalf("expected summary table, got %q", stdout)
	}
	if _, err := os.Stat(env.cfg.Paths.WorkDir); !os.IsNotExist(err) {
		t.Fatal("expected workspace removed by teardown")
	}

	store, err := history.Open(env.cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()
	records, err := store.List(context.Background(), 0)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one history record, got %d (%v)", len(records), err)
	}
	if records[0].Status != history.StatusFailed || records[0].ExitCode != 14 {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestRunEmptyFallbackMountReportsMismatch(t *testing.T) {
	env := setupCLITestEnv(t, func(cfg *config.Config) {
		cfg.Remount.TimeoutSeconds = 1
		cfg.Remount.PollIntervalSeconds = 1
	})

	code, stdout, stderr := env.run(t, "run", env.device, "cd", "--skip-preflight", "--no-history")
	if code != 18 {
		t.Fatalf("expected verification mismatch exit 18, got %d (stderr %q)", code, stderr)
	}
	if !strings.Contains(stdout, "mismatch") {
		t.Fatalf("expected mismatch in summary, got %q", stdout)
	}
	if _, err := os.Stat(env.cfg.Paths.HistoryDB); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("--no-history must not create the history database")
	}
}

func TestConfigShowAndInit(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	code, stdout, _ := env.run(t, "config", "show")
	if code != 0 || !strings.Contains(stdout, "work_dir") || !strings.Contains(stdout, env.cfg.Paths.WorkDir) {
		t.Fatalf("unexpected config show output (%d): %s", code, stdout)
	}
	if !strings.HasPrefix(stdout, "# source: "+env.configPath+"\n") {
		t.Fatalf("expected source comment, got %q", stdout)
	}

	target := filepath.Join(t.TempDir(), "new", "config.toml")
	code, stdout, _ = env.run(t, "config", "init", "--path", target)
	if code != 0 || !strings.Contains(stdout, target) {
		t.Fatalf("config init failed (%d): %s", code, stdout)
	}
	if _, _, _, err := config.Load(target); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	code, _, stderr := env.run(t, "config", "init", "--path", target)
	if code != 1 || !strings.Contains(stderr, "already exists") {
		t.Fatalf("expected refusal to overwrite, got %d %q", code, stderr)
	}
}

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	code, stdout, _ := env.run(t, "history")
	if code != 0 || !strings.Contains(stdout, "No runs recorded") {
		t.Fatalf("unexpected empty history output (%d): %s", code, stdout)
	}

	store, err := history.Open(env.cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	if _, err := store.Add(context.Background(), history.Record{
		RunID: "r1", Device: "/dev/sr7", Media: "dvd", Status: history.StatusFailed,
		Kind: "BurnError", FailedStage: "BURNED", ExitCode: 15,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_ = store.Close()

	code, stdout, _ = env.run(t, "history", "--limit", "5")
	if code != 0 || !strings.Contains(stdout, "/dev/sr7") || !strings.Contains(stdout, "BurnError") {
		t.Fatalf("unexpected history output (%d): %s", code, stdout)
	}
}

func TestDepsCommandReportsMissingTools(t *testing.T) {
	env := setupCLITestEnv(t, func(cfg *config.Config) {
		cfg.Burn.CDWriter = "definitely-not-a-writer"
	})

	code, stdout, stderr := env.run(t, "deps")
	if code != 1 || !strings.Contains(stderr, "not ready") {
		t.Fatalf("expected deps failure, got %d %q", code, stderr)
	}
	if !strings.Contains(stdout, "definitely-not-a-writer") || !strings.Contains(stdout, "[ERROR]") {
		t.Fatalf("expected missing writer in output: %s", stdout)
	}
}
