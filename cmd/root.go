package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/exercheck/internal/config"
	"github.com/stevehiehn/exercheck/internal/logging"
	"github.com/stevehiehn/exercheck/internal/ui"
)

var (
	jsonOutput bool
	configPath string
	verbose    bool
	logJSON    bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "exercheck",
	Short: "Build and grade C file-handling exercises",
	Long:  "exercheck compiles small C programs, drives them over stdin and grades their output and file side effects.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts := logging.DefaultOptions()
		if verbose {
			opts.Level = logging.LevelDebug
		}
		opts.JSON = logJSON
		logger := logging.New(opts)
		logging.SetDefault(logger)
		cmd.SetContext(logging.NewContext(cmd.Context(), logger))
		if noColor || jsonOutput {
			ui.DisableColors()
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// Execute runs the root command. An interrupt cancels the running suite,
// which still tears down its files.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
