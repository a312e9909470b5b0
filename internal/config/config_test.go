package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/econic-ai/massive-graph/internal/arena"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4, cfg.WorkerThreads)
	assert.Equal(t, arena.Medium, cfg.ChunkClass)
}

func TestFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("MG_WORKER_THREADS", "8")
	t.Setenv("MG_LOG_LEVEL", "debug")
	t.Setenv("MG_MAX_MEMORY", "1073741824")

	cfg := FromEnv()
	assert.Equal(t, 8, cfg.WorkerThreads)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(1073741824), cfg.MaxMemoryBytes)
}

func TestFromEnvIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("MG_WORKER_THREADS", "not-a-number")
	os.Unsetenv("MG_MAX_MEMORY")

	cfg := FromEnv()
	assert.Equal(t, Default().WorkerThreads, cfg.WorkerThreads)
}
