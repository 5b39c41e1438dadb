package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSample(); err != nil {
		return err
	}
	if err := c.validateBurn(); err != nil {
		return err
	}
	if err := c.validateRemount(); err != nil {
		return err
	}
	if err := c.validateChecksum(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.WorkDir == "/" {
		return errors.New("paths.work_dir must not be the filesystem root")
	}
	return nil
}

func (c *Config) validateSample() error {
	if c.Sample.Dataset == "" {
		return errors.New("sample.dataset must be set")
	}
	if strings.Contains(c.Sample.Dataset, "..") {
		return fmt.Errorf("sample.dataset %q must not escape sample.source_dir", c.Sample.Dataset)
	}
	return nil
}

func (c *Config) validateBurn() error {
	if c.Burn.GraceSeconds < 0 {
		return errors.New("burn.grace_seconds must be >= 0")
	}
	if c.Burn.Speed < 0 {
		return errors.New("burn.speed must be >= 0")
	}
	return nil
}

func (c *Config) validateRemount() error {
	if c.Remount.TimeoutSeconds < 0 {
		return errors.New("remount.timeout_seconds must be >= 0")
	}
	if c.Remount.PollIntervalSeconds < 0 {
		return errors.New("remount.poll_interval_seconds must be >= 0")
	}
	if c.Remount.PollIntervalSeconds > c.Remount.TimeoutSeconds && c.Remount.TimeoutSeconds > 0 {
		return fmt.Errorf("remount.poll_interval_seconds (%d) exceeds remount.timeout_seconds (%d)",
			c.Remount.PollIntervalSeconds, c.Remount.TimeoutSeconds)
	}
	return nil
}

func (c *Config) validateChecksum() error {
	switch c.Checksum.Algorithm {
	case "md5", "sha256":
		return nil
	default:
		return fmt.Errorf("checksum.algorithm: unsupported value %q (want md5 or sha256)", c.Checksum.Algorithm)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
