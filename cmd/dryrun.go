package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stevehiehn/exercheck/internal/engine"
)

var dryRunVars []string

var dryRunCmd = &cobra.Command{
	Use:   "dry-run [suite.yaml]",
	Short: "Show what would be written, built and run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return planSuite(cmd, args, dryRunVars, engine.ModeDryRun)
	},
}

func init() {
	dryRunCmd.Flags().StringArrayVar(&dryRunVars, "var", nil, "Template variables (key=value)")
	rootCmd.AddCommand(dryRunCmd)
}
