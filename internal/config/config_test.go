package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultSnapshotsRoot, cfg.Snapshots.Root)
	assert.Equal(t, DefaultTargetMap, cfg.Snapshots.TargetMap)
	assert.Equal(t, DefaultTargetKind, cfg.Target.Kind)
	assert.Equal(t, DefaultTargetTimeout, cfg.Target.Timeout)
	assert.Equal(t, DefaultMaxRetries, cfg.Target.MaxRetries)
	assert.Equal(t, DefaultGroupWorkers, cfg.Concurrency.Groups)
	assert.Equal(t, DefaultOperationWorkers, cfg.Concurrency.Operations)
	assert.Equal(t, DefaultChunkSize, cfg.Concurrency.ChunkSize)
	assert.Equal(t, DefaultChunkDelay, cfg.Concurrency.ChunkDelay)
}

func TestValidate_ClampsGroupWorkers(t *testing.T) {
	cfg := Default()
	cfg.Concurrency.Groups = 10
	require.NoError(t, cfg.Validate())
	assert.Equal(t, MaxGroupWorkers, cfg.Concurrency.Groups)

	cfg.Concurrency.Groups = -1
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultGroupWorkers, cfg.Concurrency.Groups)
}

func TestValidate_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Snapshots.Root = "/data/companies"
	cfg.Target.Kind = "notion"
	cfg.Target.Timeout = 5 * time.Second
	cfg.Concurrency.Operations = 2
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/data/companies", cfg.Snapshots.Root)
	assert.Equal(t, 5*time.Second, cfg.Target.Timeout)
	assert.Equal(t, 2, cfg.Concurrency.Operations)
}

func TestValidate_RejectsSubSecondTimeout(t *testing.T) {
	cfg := Default()
	cfg.Target.Timeout = 100 * time.Millisecond
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultTargetTimeout, cfg.Target.Timeout)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "notion", cfg.Target.Kind)
	assert.Equal(t, 3, cfg.Concurrency.Groups)
	assert.Equal(t, 5, cfg.Concurrency.Operations)
	assert.Equal(t, 10, cfg.Concurrency.ChunkSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Concurrency.ChunkDelay)
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	assert.Contains(t, dir, ".freqsync")
	assert.Contains(t, ConfigFilePath(), "config.yaml")
}
