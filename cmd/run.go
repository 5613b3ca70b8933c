package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/exercheck/internal/engine"
	"github.com/stevehiehn/exercheck/internal/logging"
	"github.com/stevehiehn/exercheck/internal/progress"
	"github.com/stevehiehn/exercheck/internal/suite"
	"github.com/stevehiehn/exercheck/internal/ui"
)

var (
	runDir      string
	runOnly     []string
	runVars     []string
	runCompiler string
	runTimeout  time.Duration
	runRecord   bool
)

var runCmd = &cobra.Command{
	Use:   "run [suite.yaml]",
	Short: "Build and grade every exercise in a suite",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSuite(args)
		if err != nil {
			return err
		}
		vars, err := parseVars(runVars)
		if err != nil {
			return err
		}
		if err := suite.Validate(s, vars); err != nil {
			return err
		}
		for _, id := range runOnly {
			if _, ok := s.Check(id); !ok {
				return fmt.Errorf("--only: unknown check %q", id)
			}
		}

		cfg, err := loadConfig(runDir)
		if err != nil {
			return err
		}
		if runCompiler != "" {
			cfg.Compiler.Command = runCompiler
		}
		if runTimeout > 0 {
			cfg.Timeouts.Default = runTimeout
		}
		if cmd.Flags().Changed("record") {
			cfg.Run.Record = runRecord
		}

		rc := engine.NewRunContext(runDir, vars, cfg)
		rc.Only = runOnly
		if err := requireCompiler(rc.Compiler); err != nil {
			return err
		}

		var bar *progress.Bar
		if !jsonOutput {
			bar = progress.New(progress.Options{Max: int64(len(s.Checks)), Description: s.Name})
			rc.OnCheck = func(cr engine.CheckResult) {
				bar.Describe(cr.ID)
				_ = bar.Add(1)
			}
		}

		ctx := cmd.Context()
		logging.FromContext(ctx).Debug("starting run", logging.RunID(rc.RunID), logging.Path(runDir))
		result, err := engine.Execute(ctx, s, rc, engine.ModeRun)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := writeJSON(result); err != nil {
				return err
			}
		} else {
			printReport(result)
		}
		if !result.Success {
			os.Exit(1)
		}
		return nil
	},
}

func printReport(result *engine.Result) {
	fmt.Printf("%s %s\n\n", ui.Header("Suite:"), result.Suite)
	for _, cr := range result.Checks {
		label := ui.Bold(cr.ID)
		if cr.Bonus {
			label += ui.Dim(" (bonus)")
		}
		switch cr.Status {
		case engine.StatusPassed:
			fmt.Printf("  %s %s\n", ui.StatusSuccess(label), ui.Dim(cr.Duration))
		case engine.StatusSkipped:
			fmt.Printf("  %s %s\n", ui.StatusSkipped(label), ui.Dim(cr.Reason))
		case engine.StatusFailed:
			if cr.Bonus {
				fmt.Printf("  %s\n", ui.StatusWarning(label))
			} else {
				fmt.Printf("  %s\n", ui.StatusError(label))
			}
			for _, f := range cr.Failures {
				fmt.Printf("      %s\n", f)
			}
		}
	}

	for _, e := range result.Errors {
		if e.Detail == "" && e.Hint == "" {
			continue
		}
		fmt.Printf("\n%s %s\n", ui.Error(e.Type), e.Message)
		if d := strings.TrimSpace(e.Detail); d != "" {
			for _, line := range strings.Split(d, "\n") {
				fmt.Printf("  %s\n", ui.Dim(line))
			}
		}
		if e.Hint != "" {
			fmt.Printf("  Hint: %s\n", e.Hint)
		}
	}

	fmt.Printf("\nPassed: %s  Failed: %s  Skipped: %d\n",
		ui.Success(result.Passed), ui.Error(result.Failed), result.Skipped)
	if len(result.Artifacts) > 0 {
		fmt.Printf("Artifacts: %s\n", result.Artifacts[0])
	}
	fmt.Printf("Run ID: %s\n", result.RunID)
}

func init() {
	runCmd.Flags().StringVar(&runDir, "dir", ".", "Directory holding the exercise sources")
	runCmd.Flags().StringArrayVar(&runOnly, "only", nil, "Run only the given check id (repeatable)")
	runCmd.Flags().StringArrayVar(&runVars, "var", nil, "Template variables (key=value)")
	runCmd.Flags().StringVar(&runCompiler, "compiler", "", "C compiler command (overrides config)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-invocation timeout (overrides config)")
	runCmd.Flags().BoolVar(&runRecord, "record", false, "Record invocations under .exercheck/runs")
	rootCmd.AddCommand(runCmd)
}
