package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stevehiehn/exercheck/internal/suite"
)

var schemaDefault bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the suite YAML schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaDefault {
			fmt.Print(string(suite.DefaultYAML()))
			return nil
		}
		fmt.Println(schemaText)
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaDefault, "default", false, "Print the built-in suite instead")
	rootCmd.AddCommand(schemaCmd)
}

const schemaText = `Suite YAML Schema:
  name: string (required)
  description: string (optional)
  vars:
    <name>: string (available to stdin templates as {{name}})
  fixtures:
    <file>: string (written before the run, removed after)
  scratch: [file] (removed after every check)
  checks:
    - id: string (required, unique)
      name: string (human-readable label)
      kind: build | read | write | menu | binary
      source: string (required, C source file)
      output: string (executable name, default: source without extension)
      bonus: bool
      covers: [check id] (bonus only; later checks skipped when this passes)
      timeout: duration with unit, e.g. 5s (default: config timeouts.default)
      read:
        fixture: string (default: test.txt)
        missing: string (default: nonexistent.txt)
        stdin: template, vars: file (default: "{{file}}\n")
        error_tokens: [string] (default: [error, not found])
      write:
        target: string (default: overwrite_test.txt)
        stdin: template, vars: target, mode, text
        overwrite: {mode: w, text: Overwrite content}
        append: {mode: a, text: Appended content}
      menu:
        fixture: string (default: test.txt)
        probe: template, vars: fixture
        stdin: template, vars: fixture, choice
        tokens: [string] (case-insensitive menu markers)
        inputs: [string] (choices, at least one must exit 0)
        input_timeout: duration with unit (default: config timeouts.menu_input)
      binary:
        stdin: string
        expect: [int] (default: [1, 2, 3, 4, 5])
  Note: kind blocks are optional; omitted fields take the defaults shown.
  Durations must carry a unit and be at least 1ms. The executable name
  may not equal any source or fixture file.`
