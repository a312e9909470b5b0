// Package config loads the core's runtime knobs from environment
// variables. See doc.go for why this package stays on the standard
// library rather than reaching for a third-party config library.
package config

import (
	"os"
	"strconv"

	"github.com/econic-ai/massive-graph/internal/arena"
)

// Config holds every environment-tunable runtime knob.
type Config struct {
	// MaxMemoryBytes is the configured cap on total arena memory
	// (0 = unbounded). Neither the arena package nor any caller in this
	// module enforces it.
	MaxMemoryBytes int64
	// WorkerThreads is the pipeline's worker pool size.
	WorkerThreads int
	// MaxConnections bounds concurrent external callers; consumed by
	// the out-of-scope transport layer, carried here so it loads from
	// the same environment block.
	MaxConnections int
	// LogLevel is a zerolog level name ("debug", "info", "warn", "error").
	LogLevel string

	// ChunkClass selects the arena chunk size class.
	ChunkClass arena.ChunkClass
	// StreamPageCapacity is the page size for every stream.Stream.
	StreamPageCapacity int
	// PublishThreshold is the overlay size (entry count) at which a
	// caller should schedule OptimisedIndex.Publish.
	PublishThreshold int
}

// Default returns the configuration used when no environment variables
// are set.
func Default() Config {
	return Config{
		MaxMemoryBytes:     0,
		WorkerThreads:      4,
		MaxConnections:     1024,
		LogLevel:           "info",
		ChunkClass:         arena.Medium,
		StreamPageCapacity: 512,
		PublishThreshold:   4096,
	}
}

// FromEnv loads Config from the environment, falling back to Default
// for any variable that is unset or fails to parse.
func FromEnv() Config {
	cfg := Default()

	if v, ok := lookupInt64("MG_MAX_MEMORY"); ok {
		cfg.MaxMemoryBytes = v
	}
	if v, ok := lookupInt("MG_WORKER_THREADS"); ok {
		cfg.WorkerThreads = v
	}
	if v, ok := lookupInt("MG_MAX_CONNECTIONS"); ok {
		cfg.MaxConnections = v
	}
	if v, ok := os.LookupEnv("MG_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookupInt("MG_CHUNK_CLASS_BYTES"); ok {
		cfg.ChunkClass = arena.ChunkClass(v)
	}
	if v, ok := lookupInt("MG_STREAM_PAGE_CAPACITY"); ok {
		cfg.StreamPageCapacity = v
	}
	if v, ok := lookupInt("MG_PUBLISH_THRESHOLD"); ok {
		cfg.PublishThreshold = v
	}

	return cfg
}

func lookupInt(name string) (int, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func lookupInt64(name string) (int64, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
