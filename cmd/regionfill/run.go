package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/regionfill"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill, verify, re-sample reversed and verify again",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		h, err := regionfill.New(cfg)
		if err != nil {
			return err
		}
		defer h.Close()

		report, err := h.Run(cmd.Context())
		if report != nil {
			for _, ph := range report.Phases {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-6s %v", ph.Name, status(ph.Passed), ph.Duration)
				if d := ph.Throttled(); d > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), " (throttled %v)", d)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
		}
		if err != nil {
			return err
		}
		return report.Err()
	},
}

func status(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAILED"
}
