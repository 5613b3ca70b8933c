package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/exercheck/internal/suite"
	"github.com/stevehiehn/exercheck/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate [suite.yaml]",
	Short: "Validate a suite file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSuite(args)
		if err == nil {
			err = suite.Validate(s, nil)
		}
		if err != nil {
			if jsonOutput {
				writeJSON(map[string]any{"valid": false, "error": err.Error()})
			} else {
				fmt.Fprintf(os.Stderr, "%s\n", ui.StatusError("Validation failed: "+err.Error()))
			}
			os.Exit(1)
		}
		if jsonOutput {
			return writeJSON(map[string]any{"valid": true, "checks": len(s.Checks)})
		}
		fmt.Println(ui.StatusSuccess(fmt.Sprintf("Suite %q is valid (%d checks).", s.Name, len(s.Checks))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
