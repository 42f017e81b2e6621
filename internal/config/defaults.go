package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	DefaultSnapshotsRoot = "./companies"
	DefaultTargetMap     = "./targets.yaml"

	DefaultTargetKind    = "notion"
	DefaultTargetTimeout = 30 * time.Second
	DefaultMaxRetries    = 3

	// Group-level fan-out is capped: groups sharing a database must not
	// interleave, and the remote rate budget is shared across groups.
	DefaultGroupWorkers = 3
	MaxGroupWorkers     = 3

	DefaultOperationWorkers = 5
	DefaultChunkSize        = 10
	DefaultChunkDelay       = 300 * time.Millisecond

	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".freqsync"
	}
	return filepath.Join(home, ".freqsync")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Snapshots: SnapshotsConfig{
			Root:      DefaultSnapshotsRoot,
			TargetMap: DefaultTargetMap,
		},
		Target: TargetConfig{
			Kind:       DefaultTargetKind,
			Timeout:    DefaultTargetTimeout,
			MaxRetries: DefaultMaxRetries,
		},
		Concurrency: ConcurrencyConfig{
			Groups:     DefaultGroupWorkers,
			Operations: DefaultOperationWorkers,
			ChunkSize:  DefaultChunkSize,
			ChunkDelay: DefaultChunkDelay,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
