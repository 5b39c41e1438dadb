package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSample()
	c.normalizeImage()
	c.normalizeBurn()
	c.normalizeRemount()
	c.Checksum.Algorithm = strings.ToLower(strings.TrimSpace(c.Checksum.Algorithm))
	if c.Checksum.Algorithm == "" {
		c.Checksum.Algorithm = defaultChecksumAlgorithm
	}
	c.normalizeLogging()
	c.Soak.Schedule = strings.TrimSpace(c.Soak.Schedule)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockDir) == "" {
		c.Paths.LockDir = defaultLockDir
	}
	if c.Paths.LockDir, err = expandPath(c.Paths.LockDir); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if c.Sample.SourceDir, err = expandPath(c.Sample.SourceDir); err != nil {
		return fmt.Errorf("sample.source_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSample() {
	c.Sample.Dataset = strings.Trim(strings.TrimSpace(c.Sample.Dataset), "/")
	c.Sample.ManifestName = filepath.Base(strings.TrimSpace(c.Sample.ManifestName))
	if c.Sample.ManifestName == "." || c.Sample.ManifestName == "/" {
		c.Sample.ManifestName = defaultManifestName
	}
}

func (c *Config) normalizeImage() {
	c.Image.Name = filepath.Base(strings.TrimSpace(c.Image.Name))
	if c.Image.Name == "." || c.Image.Name == "/" {
		c.Image.Name = defaultImageName
	}
	c.Image.Tool = strings.TrimSpace(c.Image.Tool)
	if c.Image.Tool == "" {
		c.Image.Tool = defaultImageTool
	}
	c.Image.VolumeLabel = strings.TrimSpace(c.Image.VolumeLabel)
	if c.Image.VolumeLabel == "" {
		c.Image.VolumeLabel = defaultVolumeLabel
	}
}

func (c *Config) normalizeBurn() {
	c.Burn.CDWriter = strings.TrimSpace(c.Burn.CDWriter)
	if c.Burn.CDWriter == "" {
		c.Burn.CDWriter = defaultCDWriter
	}
	c.Burn.DVDWriter = strings.TrimSpace(c.Burn.DVDWriter)
	if c.Burn.DVDWriter == "" {
		c.Burn.DVDWriter = defaultDVDWriter
	}
}

func (c *Config) normalizeRemount() {
	if c.Remount.TimeoutSeconds == 0 {
		c.Remount.TimeoutSeconds = defaultRemountTimeout
	}
	if c.Remount.PollIntervalSeconds == 0 {
		c.Remount.PollIntervalSeconds = defaultRemountPollInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
