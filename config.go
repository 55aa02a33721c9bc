package regionfill

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/regionfill/compress"
	"github.com/hupe1980/regionfill/fill"
	"github.com/hupe1980/regionfill/internal/resource"
	"github.com/hupe1980/regionfill/layout"
)

// DefaultTotalLength is the size of the fill image when none is configured.
const DefaultTotalLength = 1 << 30

// DefaultRegions is the number of concurrent regions when none is configured.
const DefaultRegions = 4

// Archive backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinIO = "minio"
)

// Config describes one fill image and how it is produced.
type Config struct {
	// Path of the backing file. Empty selects a unique file in the temp dir.
	Path        string `yaml:"path"`
	TotalLength int64  `yaml:"total_length"`
	Regions     int64  `yaml:"regions"`
	BufferSize  int    `yaml:"buffer_size"`

	// Reversed fills region i with n-i instead of i.
	Reversed bool `yaml:"reversed"`

	// Sync flushes every region to the file before its view is released.
	Sync bool `yaml:"sync"`

	// KeepFile leaves the backing file in place on Close.
	KeepFile bool `yaml:"keep_file"`

	MaxWorkers         int64 `yaml:"max_workers"`
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Archive ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig selects where archived images go.
type ArchiveConfig struct {
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	Endpoint    string `yaml:"endpoint"`
	Region      string `yaml:"region"`
	Secure      bool   `yaml:"secure"`
	Compression string `yaml:"compression"`
}

// DefaultConfig returns a 1 GiB, four region configuration.
func DefaultConfig() Config {
	return Config{
		TotalLength: DefaultTotalLength,
		Regions:     DefaultRegions,
		BufferSize:  fill.DefaultBufferSize,
		LogLevel:    "info",
		LogFormat:   "text",
		Archive: ArchiveConfig{
			Backend:     BackendLocal,
			Dir:         "archives",
			Compression: compress.Default.Name(),
		},
	}
}

// LoadConfig reads a YAML config file. A missing file is created with the
// defaults, which are then returned.
func LoadConfig(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return Config{}, fmt.Errorf("marshal default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return Config{}, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration without touching the file system.
func (c Config) Validate() error {
	if _, err := layout.Partition(c.TotalLength, c.Regions); err != nil {
		return &ErrInvalidConfig{Field: "regions", cause: err}
	}
	if c.BufferSize <= 0 {
		return &ErrInvalidConfig{Field: "buffer_size", cause: fill.ErrInvalidBufferSize}
	}
	if c.MaxWorkers < 0 {
		return &ErrInvalidConfig{Field: "max_workers", cause: errNegative}
	}
	if c.MemoryLimitBytes < 0 {
		return &ErrInvalidConfig{Field: "memory_limit_bytes", cause: errNegative}
	}
	if need := c.bufferMemory(); c.MemoryLimitBytes > 0 && c.MemoryLimitBytes < need {
		return &ErrInvalidConfig{
			Field: "memory_limit_bytes",
			cause: fmt.Errorf("%w: %d bytes, buffers need %d", errMemoryBudget, c.MemoryLimitBytes, need),
		}
	}
	if c.IOLimitBytesPerSec < 0 {
		return &ErrInvalidConfig{Field: "io_limit_bytes_per_sec", cause: errNegative}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return &ErrInvalidConfig{Field: "log_level", cause: err}
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return &ErrInvalidConfig{Field: "log_format", cause: fmt.Errorf("unknown format %q", c.LogFormat)}
	}
	return c.Archive.Validate()
}

// Validate checks the archive section.
func (a ArchiveConfig) Validate() error {
	switch a.Backend {
	case "", BackendLocal:
	case BackendS3, BackendMinIO:
		if a.Bucket == "" {
			return &ErrInvalidConfig{Field: "archive.bucket", cause: errors.New("required for " + a.Backend)}
		}
	default:
		return &ErrInvalidConfig{Field: "archive.backend", cause: fmt.Errorf("unknown backend %q", a.Backend)}
	}
	if _, ok := compress.ByName(a.Compression); !ok {
		return &ErrInvalidConfig{Field: "archive.compression", cause: fmt.Errorf("unknown codec %q", a.Compression)}
	}
	return nil
}

// Policy returns the value policy selected by Reversed.
func (c Config) Policy() layout.Policy {
	return layout.PolicyFor(c.Reversed)
}

// Resources returns the resource limits of c.
func (c Config) Resources() resource.Config {
	return resource.Config{
		MemoryLimitBytes:   c.MemoryLimitBytes,
		MaxWorkers:         c.MaxWorkers,
		IOLimitBytesPerSec: c.IOLimitBytesPerSec,
	}
}

func (c Config) resolvedPath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(os.TempDir(), "regionfill-"+uuid.NewString()+".bin")
}

var (
	errNegative     = errors.New("must not be negative")
	errMemoryBudget = errors.New("below the buffer working set")
)

// bufferMemory is the most buffer memory a fill or verify phase holds at once:
// the verifier's region buffer, or one write buffer per running writer.
// Phases never overlap.
func (c Config) bufferMemory() int64 {
	chunk := c.TotalLength / c.Regions
	writers := c.Regions
	if c.MaxWorkers > 0 && c.MaxWorkers < writers {
		writers = c.MaxWorkers
	}
	return max(chunk, writers*min(int64(c.BufferSize), chunk))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, err
	}
	return level, nil
}
