package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file, environment, and defaults.
// Uses the global viper instance to access CLI flag bindings.
func Load() (*Config, error) {
	v := viper.GetViper()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Environment variables (FREQSYNC_*)
	v.SetEnvPrefix("FREQSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("snapshots.root", DefaultSnapshotsRoot)
	v.SetDefault("snapshots.target_map", DefaultTargetMap)

	v.SetDefault("target.kind", DefaultTargetKind)
	v.SetDefault("target.token", "")
	v.SetDefault("target.base_url", "")
	v.SetDefault("target.timeout", DefaultTargetTimeout)
	v.SetDefault("target.max_retries", DefaultMaxRetries)

	v.SetDefault("concurrency.groups", DefaultGroupWorkers)
	v.SetDefault("concurrency.operations", DefaultOperationWorkers)
	v.SetDefault("concurrency.chunk_size", DefaultChunkSize)
	v.SetDefault("concurrency.chunk_delay", DefaultChunkDelay)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
