package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/regionfill"
)

func init() {
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(verifyCmd)
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the backing file once and keep it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg.KeepFile = true

		h, err := regionfill.New(cfg)
		if err != nil {
			return err
		}
		defer h.Close()

		rep, err := h.Fill(cmd.Context(), cfg.Policy())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes in %d regions (%s) in %v\n",
			h.Path(), rep.BytesWritten, len(rep.Regions), rep.Policy, rep.Duration)
		return rep.Err()
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify an existing backing file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Path == "" {
			return fmt.Errorf("verify: --path is required")
		}
		cfg.KeepFile = true

		h, err := regionfill.New(cfg)
		if err != nil {
			return err
		}
		defer h.Close()

		res, err := h.Verify(cmd.Context(), cfg.Policy())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d bytes read)\n", h.Path(), status(res.Passed), res.BytesRead)
		return res.Err()
	},
}
