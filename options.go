package regionfill

import (
	"log/slog"
	"os"

	"github.com/hupe1980/regionfill/compress"
	"github.com/hupe1980/regionfill/internal/fs"
	"github.com/hupe1980/regionfill/internal/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	fileSystem       fs.FileSystem
	resources        *resource.Controller
	codec            compress.Codec
}

// Option configures a Harness.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel logs text records at level to stderr.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(os.Stderr, level)
	}
}

// WithMetricsCollector sets the metrics collector. Nil disables metrics.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithFileSystem replaces the file system used for the backing file.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fileSystem = fsys
	}
}

// WithResourceController shares a resource controller across harnesses.
// By default each harness builds one from its Config.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithArchiveCompression overrides the archive codec from the Config.
//
// If nil is passed, compress.Default is used.
func WithArchiveCompression(c compress.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = compress.Default
		}
		o.codec = c
	}
}

func applyOptions(cfg Config, opts []Option) (options, error) {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		fileSystem:       fs.Default,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	if o.logger == nil {
		l, err := loggerFromConfig(cfg)
		if err != nil {
			return options{}, err
		}
		o.logger = l
	}
	if o.fileSystem == nil {
		o.fileSystem = fs.Default
	}
	if o.resources == nil {
		o.resources = resource.NewController(cfg.Resources())
	}
	if o.codec == nil {
		c, ok := compress.ByName(cfg.Archive.Compression)
		if !ok {
			return options{}, &ErrInvalidConfig{Field: "archive.compression"}
		}
		o.codec = c
	}
	return o, nil
}

func loggerFromConfig(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, &ErrInvalidConfig{Field: "log_level", cause: err}
	}
	if cfg.LogFormat == "json" {
		return NewJSONLogger(os.Stderr, level), nil
	}
	return NewTextLogger(os.Stderr, level), nil
}
