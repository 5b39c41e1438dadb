package config

const (
	defaultConfigPath          = "~/.config/burncheck/config.toml"
	defaultWorkDir             = "/tmp/optical-test"
	defaultLogDir              = "~/.local/share/burncheck/logs"
	defaultLockDir             = "~/.local/share/burncheck/locks"
	defaultHistoryDB           = "~/.local/share/burncheck/history.db"
	defaultSampleSourceDir     = "/usr/share/example-content/"
	defaultSampleDataset       = "Ubuntu_Free_Culture_Showcase"
	defaultManifestName        = "optical_test.md5"
	defaultImageName           = "optical-test.iso"
	defaultImageTool           = "genisoimage"
	defaultVolumeLabel         = "OPTICAL_TEST"
	defaultBurnGraceSeconds    = 10
	defaultCDWriter            = "wodim"
	defaultDVDWriter           = "growisofs"
	defaultRemountTimeout      = 300
	defaultRemountPollInterval = 3
	defaultChecksumAlgorithm   = "md5"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultSoakSchedule        = "@every 6h"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			LockDir:   defaultLockDir,
			HistoryDB: defaultHistoryDB,
		},
		Sample: Sample{
			SourceDir:    defaultSampleSourceDir,
			Dataset:      defaultSampleDataset,
			ManifestName: defaultManifestName,
		},
		Image: Image{
			Name:        defaultImageName,
			Tool:        defaultImageTool,
			VolumeLabel: defaultVolumeLabel,
		},
		Burn: Burn{
			GraceSeconds: defaultBurnGraceSeconds,
			CDWriter:     defaultCDWriter,
			DVDWriter:    defaultDVDWriter,
		},
		Remount: Remount{
			TimeoutSeconds:      defaultRemountTimeout,
			PollIntervalSeconds: defaultRemountPollInterval,
			WatchUdev:           true,
		},
		Checksum: Checksum{
			Algorithm: defaultChecksumAlgorithm,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Soak: Soak{
			Schedule: defaultSoakSchedule,
		},
	}
}
