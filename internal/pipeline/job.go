package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"burncheck/internal/config"
	"burncheck/internal/disc"
)

// ReadbackDirName is the workspace subdirectory holding data copied off the
// burned disc.
const ReadbackDirName = "readback"

// Job is the immutable description of one run. It is built once at startup
// and passed by value; nothing mutates it afterwards.
type Job struct {
	WorkDir      string
	SampleSource string
	Dataset      string
	ManifestName string
	ImageName    string
	OriginalDir  string
	Device       string
	Media        string
}

// NewJob assembles a Job from configuration and the two positional
// arguments. The device must exist and is stored in canonical form so burn,
// remount, and teardown all address the same node. Media is kept verbatim;
// unsupported kinds are rejected by the burn stage.
func NewJob(cfg *config.Config, device, media, originalDir string) (Job, error) {
	if cfg == nil {
		return Job{}, errors.New("config is required")
	}
	resolved, err := disc.ResolveDevice(device)
	if err != nil {
		return Job{}, err
	}
	if strings.TrimSpace(media) == "" {
		return Job{}, errors.New("media kind is required")
	}
	if strings.TrimSpace(originalDir) == "" {
		return Job{}, errors.New("original directory is required")
	}
	job := Job{
		WorkDir:      cfg.Paths.WorkDir,
		SampleSource: cfg.Sample.SourceDir,
		Dataset:      cfg.Sample.Dataset,
		ManifestName: cfg.Sample.ManifestName,
		ImageName:    cfg.Image.Name,
		OriginalDir:  originalDir,
		Device:       resolved,
		Media:        strings.TrimSpace(media),
	}
	if job.WorkDir == "" || job.Dataset == "" || job.ManifestName == "" || job.ImageName == "" {
		return Job{}, fmt.Errorf("incomplete job configuration: %+v", job)
	}
	return job, nil
}

// DatasetDir is where the sample data is staged.
func (j Job) DatasetDir() string { return filepath.Join(j.WorkDir, j.Dataset) }

// ManifestPath is the checksum manifest location.
func (j Job) ManifestPath() string { return filepath.Join(j.WorkDir, j.ManifestName) }

// ImagePath is the authored ISO location.
func (j Job) ImagePath() string { return filepath.Join(j.WorkDir, j.ImageName) }

// ReadbackDir receives the copy taken from the burned disc.
func (j Job) ReadbackDir() string { return filepath.Join(j.WorkDir, ReadbackDirName) }
