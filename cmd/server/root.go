package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bizsight",
	Short: "BizSight inventory and sales API",
	Long: `BizSight keeps per-user product inventories and sales, with bulk CSV
import and reconciliation.

Running bizsight with no subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}
