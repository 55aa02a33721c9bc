package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/regionfill"
	"github.com/hupe1980/regionfill/layout"
)

var archiveFlags struct {
	name        string
	backend     string
	dir         string
	bucket      string
	prefix      string
	endpoint    string
	compression string
	policy      string
}

func init() {
	for _, cmd := range []*cobra.Command{archiveCmd, verifyArchiveCmd} {
		f := cmd.Flags()
		f.StringVar(&archiveFlags.name, "name", "", "archive name (default: base name of --path)")
		f.StringVar(&archiveFlags.backend, "backend", "", "local, s3 or minio")
		f.StringVar(&archiveFlags.dir, "dir", "", "archive directory for the local backend")
		f.StringVar(&archiveFlags.bucket, "bucket", "", "bucket for s3 and minio")
		f.StringVar(&archiveFlags.prefix, "prefix", "", "key prefix for s3 and minio")
		f.StringVar(&archiveFlags.endpoint, "endpoint", "", "endpoint for minio or an S3-compatible service")
		f.StringVar(&archiveFlags.compression, "compression", "", "none, lz4 or zstd")
		rootCmd.AddCommand(cmd)
	}
	verifyArchiveCmd.Flags().StringVar(&archiveFlags.policy, "policy", "", "forward or reversed (default: from --reversed)")
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Stream a filled backing file into a blob store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := archiveConfig(cmd)
		if err != nil {
			return err
		}

		h, err := regionfill.New(cfg)
		if err != nil {
			return err
		}
		defer h.Close()

		store, err := openStore(cmd.Context(), cfg.Archive)
		if err != nil {
			return err
		}

		name := archiveFlags.name
		if name == "" {
			name = filepath.Base(cfg.Path)
		}
		ar, err := h.Archive(cmd.Context(), store, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes stored as %d (%s)\n", ar.Name, ar.RawBytes, ar.StoredBytes, ar.Codec)
		return nil
	},
}

var verifyArchiveCmd = &cobra.Command{
	Use:   "verify-archive",
	Short: "Verify an archived image straight from the blob store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := archiveConfig(cmd)
		if err != nil {
			return err
		}
		if archiveFlags.name == "" {
			return fmt.Errorf("verify-archive: --name is required")
		}

		p := cfg.Policy()
		if archiveFlags.policy != "" {
			if p, err = layout.ParsePolicy(archiveFlags.policy); err != nil {
				return err
			}
		}

		h, err := regionfill.New(cfg)
		if err != nil {
			return err
		}
		defer h.Close()

		store, err := openStore(cmd.Context(), cfg.Archive)
		if err != nil {
			return err
		}

		res, err := h.VerifyArchive(cmd.Context(), store, archiveFlags.name, p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d bytes read)\n", archiveFlags.name, status(res.Passed), res.BytesRead)
		return res.Err()
	},
}

// archiveConfig loads the config for commands that never write the backing file.
func archiveConfig(cmd *cobra.Command) (regionfill.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, err
	}
	cfg.KeepFile = true

	f := cmd.Flags()
	a := &cfg.Archive
	if f.Changed("backend") {
		a.Backend = archiveFlags.backend
	}
	if f.Changed("dir") {
		a.Dir = archiveFlags.dir
	}
	if f.Changed("bucket") {
		a.Bucket = archiveFlags.bucket
	}
	if f.Changed("prefix") {
		a.Prefix = archiveFlags.prefix
	}
	if f.Changed("endpoint") {
		a.Endpoint = archiveFlags.endpoint
	}
	if f.Changed("compression") {
		a.Compression = archiveFlags.compression
	}
	return cfg, cfg.Validate()
}
