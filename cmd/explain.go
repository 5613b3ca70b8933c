package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/exercheck/internal/engine"
	"github.com/stevehiehn/exercheck/internal/suite"
	"github.com/stevehiehn/exercheck/internal/ui"
)

var explainVars []string

var explainCmd = &cobra.Command{
	Use:   "explain [suite.yaml]",
	Short: "Show resolved checks without building or running anything",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return planSuite(cmd, args, explainVars, engine.ModeExplain)
	},
}

// planSuite runs a suite in one of the non-executing modes and prints it.
func planSuite(cmd *cobra.Command, args, rawVars []string, mode engine.Mode) error {
	s, err := loadSuite(args)
	if err != nil {
		return err
	}
	vars, err := parseVars(rawVars)
	if err != nil {
		return err
	}
	if err := suite.Validate(s, vars); err != nil {
		return err
	}
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}

	rc := engine.NewRunContext(".", vars, cfg)
	result, err := engine.Execute(cmd.Context(), s, rc, mode)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(result)
	}

	if mode == engine.ModeDryRun {
		fmt.Printf("%s %s\n\n", ui.Header("Dry-run:"), s.Name)
		if len(result.Fixtures) > 0 {
			fmt.Printf("Would write fixtures: %v\n\n", result.Fixtures)
		}
	} else {
		fmt.Printf("%s %s\n", ui.Header("Suite:"), s.Name)
		if s.Description != "" {
			fmt.Printf("  %s\n", s.Description)
		}
		fmt.Println()
	}
	for _, cr := range result.Checks {
		fmt.Print(ui.StatusPending(fmt.Sprintf("%s [%s]", ui.Bold(cr.ID), cr.Kind)))
		if cr.Bonus {
			fmt.Print(ui.Dim(" bonus"))
		}
		fmt.Println()
		if cr.Name != "" {
			fmt.Printf("  Name: %s\n", cr.Name)
		}
		if cr.Status == engine.StatusSkipped {
			fmt.Printf("  Skipped: %s\n\n", cr.Reason)
			continue
		}
		fmt.Printf("  Build: %s\n", cr.Command)
		if cr.Reason != "" {
			fmt.Printf("  %s\n", ui.Info(cr.Reason))
		}
		for _, inv := range cr.Invocations {
			fmt.Printf("  %s stdin %q\n", inv.Label+":", inv.Stdin)
		}
		if cr.DryRunInfo != "" {
			fmt.Printf("  %s\n", cr.DryRunInfo)
		}
		fmt.Println()
	}
	return nil
}

func init() {
	explainCmd.Flags().StringArrayVar(&explainVars, "var", nil, "Template variables (key=value)")
	rootCmd.AddCommand(explainCmd)
}
