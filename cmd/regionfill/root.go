package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/regionfill"
)

var rootCmd = &cobra.Command{
	Use:   "regionfill",
	Short: "Concurrent region fill and sequential verify",
	Long: `regionfill splits a file into equal regions, fills every region with its
own byte value from its own goroutine through a shared memory mapping, and
verifies the result with a plain sequential read.`,
	SilenceUsage: true,
}

var flags struct {
	config      string
	path        string
	totalLength int64
	regions     int64
	bufferSize  int
	reversed    bool
	maxWorkers  int64
	ioLimit     int64
	memoryLimit int64
	sync        bool
	keepFile    bool
	logLevel    string
	logFormat   string
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "YAML config file (created with defaults if missing)")
	pf.StringVar(&flags.path, "path", "", "backing file (default: unique file in the temp dir)")
	pf.Int64Var(&flags.totalLength, "total-length", regionfill.DefaultTotalLength, "file size in bytes")
	pf.Int64Var(&flags.regions, "regions", regionfill.DefaultRegions, "number of regions")
	pf.IntVar(&flags.bufferSize, "buffer-size", 1024, "write buffer size per region")
	pf.BoolVar(&flags.reversed, "reversed", false, "fill region i with n-i instead of i")
	pf.Int64Var(&flags.maxWorkers, "max-workers", 0, "regions written at once (0: all)")
	pf.Int64Var(&flags.ioLimit, "io-limit", 0, "combined throughput limit in bytes/s (0: unlimited)")
	pf.Int64Var(&flags.memoryLimit, "memory-limit", 0, "buffer memory limit in bytes (0: unlimited)")
	pf.BoolVar(&flags.sync, "sync", false, "flush every region to disk before releasing it")
	pf.BoolVar(&flags.keepFile, "keep-file", false, "keep the backing file after the command")
	pf.StringVar(&flags.logLevel, "log-level", "info", "debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "text", "text or json")
}

// loadConfig reads the config file, if any, and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (regionfill.Config, error) {
	cfg := regionfill.DefaultConfig()
	if flags.config != "" {
		var err error
		if cfg, err = regionfill.LoadConfig(flags.config); err != nil {
			return cfg, err
		}
	}

	pf := cmd.Flags()
	if pf.Changed("path") {
		cfg.Path = flags.path
	}
	if pf.Changed("total-length") {
		cfg.TotalLength = flags.totalLength
	}
	if pf.Changed("regions") {
		cfg.Regions = flags.regions
	}
	if pf.Changed("buffer-size") {
		cfg.BufferSize = flags.bufferSize
	}
	if pf.Changed("reversed") {
		cfg.Reversed = flags.reversed
	}
	if pf.Changed("max-workers") {
		cfg.MaxWorkers = flags.maxWorkers
	}
	if pf.Changed("io-limit") {
		cfg.IOLimitBytesPerSec = flags.ioLimit
	}
	if pf.Changed("memory-limit") {
		cfg.MemoryLimitBytes = flags.memoryLimit
	}
	if pf.Changed("sync") {
		cfg.Sync = flags.sync
	}
	if pf.Changed("keep-file") {
		cfg.KeepFile = flags.keepFile
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if pf.Changed("log-format") {
		cfg.LogFormat = flags.logFormat
	}
	return cfg, cfg.Validate()
}
