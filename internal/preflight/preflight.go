package preflight

import (
	"path/filepath"

	"burncheck/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the path and drive checks for a run against device.
// Binary availability is reported separately by CheckSystemDeps.
func RunAll(cfg *config.Config, device string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDir("Sample dataset", cfg.SampleDatasetDir()),
		CheckDirectoryAccess("Work directory parent", filepath.Dir(cfg.Paths.WorkDir)),
		CheckDirectoryAccess("Lock directory", cfg.Paths.LockDir),
	}
	if device != "" {
		results = append(results, CheckDevice(device))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
