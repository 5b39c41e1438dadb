package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	LockDir   string `toml:"lock_dir"`
	HistoryDB string `toml:"history_db"`
}

// Sample describes the known dataset burned to every disc.
type Sample struct {
	SourceDir    string `toml:"source_dir"`
	Dataset      string `toml:"dataset"`
	ManifestName string `toml:"manifest_name"`
}

// Image contains ISO authoring settings.
type Image struct {
	Name        string `toml:"name"`
	Tool        string `toml:"tool"`
	VolumeLabel string `toml:"volume_label"`
}

// Burn contains disc writer settings.
type Burn struct {
	GraceSeconds int    `toml:"grace_seconds"`
	CDWriter     string `toml:"cd_writer"`
	DVDWriter    string `toml:"dvd_writer"`
	Speed        int    `toml:"speed"`
}

// Remount controls how long the pipeline waits for the burned disc to reappear.
type Remount struct {
	TimeoutSeconds      int  `toml:"timeout_seconds"`
	PollIntervalSeconds int  `toml:"poll_interval_seconds"`
	WatchUdev           bool `toml:"watch_udev"`
}

// Checksum selects the manifest digest.
type Checksum struct {
	Algorithm string `toml:"algorithm"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Soak configures repeated scheduled runs.
type Soak struct {
	Schedule string `toml:"schedule"`
}

// Config encapsulates all configuration values for burncheck.
//
// Configuration sections by subsystem:
//   - Paths: working directory, logs, drive locks, and run history
//   - Sample: the dataset copied onto every disc
//   - Image: ISO authoring tool and volume label
//   - Burn: writer binaries, spin-up grace period, write speed
//   - Remount: post-burn wait ceiling and poll interval
//   - Checksum: manifest digest algorithm
//   - Logging: log format and level
//   - Soak: cron schedule for repeated runs
type Config struct {
	Paths    Paths    `toml:"paths"`
	Sample   Sample   `toml:"sample"`
	Image    Image    `toml:"image"`
	Burn     Burn     `toml:"burn"`
	Remount  Remount  `toml:"remount"`
	Checksum Checksum `toml:"checksum"`
	Logging  Logging  `toml:"logging"`
	Soak     Soak     `toml:"soak"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("burncheck.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories burncheck keeps between runs. The
// working directory is deliberately excluded: it belongs to a single run.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, c.Paths.LockDir, filepath.Dir(c.Paths.HistoryDB)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleDatasetDir returns the source directory of the sample dataset.
func (c *Config) SampleDatasetDir() string {
	return filepath.Join(c.Sample.SourceDir, c.Sample.Dataset)
}

// ImageBinary returns the ISO authoring executable. The default genisoimage
// falls back to mkisofs when only the latter is installed.
func (c *Config) ImageBinary() string {
	if c.Image.Tool != defaultImageTool {
		return c.Image.Tool
	}
	if _, err := exec.LookPath(defaultImageTool); err != nil {
		if _, err := exec.LookPath("mkisofs"); err == nil {
			return "mkisofs"
		}
	}
	return c.Image.Tool
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	var sb strings.Builder
	encoder := toml.NewEncoder(&sb)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return sb.String(), nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
