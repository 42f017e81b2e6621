package config

import "time"

// Config represents the application configuration
type Config struct {
	Snapshots   SnapshotsConfig   `mapstructure:"snapshots" yaml:"snapshots"`
	Target      TargetConfig      `mapstructure:"target" yaml:"target"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// SnapshotsConfig locates the local snapshot tree and the target map
type SnapshotsConfig struct {
	Root      string `mapstructure:"root" yaml:"root"`
	TargetMap string `mapstructure:"target_map" yaml:"target_map"`
}

// TargetConfig contains remote target settings
type TargetConfig struct {
	Kind       string        `mapstructure:"kind" yaml:"kind"`
	Token      string        `mapstructure:"token" yaml:"token"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	Groups     int           `mapstructure:"groups" yaml:"groups"`
	Operations int           `mapstructure:"operations" yaml:"operations"`
	ChunkSize  int           `mapstructure:"chunk_size" yaml:"chunk_size"`
	ChunkDelay time.Duration `mapstructure:"chunk_delay" yaml:"chunk_delay"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration and applies defaults for invalid values
func (c *Config) Validate() error {
	if c.Snapshots.Root == "" {
		c.Snapshots.Root = DefaultSnapshotsRoot
	}
	if c.Snapshots.TargetMap == "" {
		c.Snapshots.TargetMap = DefaultTargetMap
	}
	if c.Target.Kind == "" {
		c.Target.Kind = DefaultTargetKind
	}
	if c.Target.Timeout < time.Second {
		c.Target.Timeout = DefaultTargetTimeout
	}
	if c.Target.MaxRetries < 1 {
		c.Target.MaxRetries = DefaultMaxRetries
	}
	if c.Concurrency.Groups < 1 {
		c.Concurrency.Groups = DefaultGroupWorkers
	}
	if c.Concurrency.Groups > MaxGroupWorkers {
		c.Concurrency.Groups = MaxGroupWorkers
	}
	if c.Concurrency.Operations < 1 {
		c.Concurrency.Operations = DefaultOperationWorkers
	}
	if c.Concurrency.ChunkSize < 1 {
		c.Concurrency.ChunkSize = DefaultChunkSize
	}
	if c.Concurrency.ChunkDelay <= 0 {
		c.Concurrency.ChunkDelay = DefaultChunkDelay
	}
	return nil
}
