package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/stevehiehn/exercheck/internal/config"
	dagerrors "github.com/stevehiehn/exercheck/internal/errors"
	"github.com/stevehiehn/exercheck/internal/suite"
	"github.com/stevehiehn/exercheck/internal/toolchain"
	"github.com/stevehiehn/exercheck/internal/ui"
)

// parseVars converts ["key=value", ...] to a map.
func parseVars(raw []string) (map[string]string, error) {
	m := map[string]string{}
	for _, kv := range raw {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", kv)
		}
		m[parts[0]] = parts[1]
	}
	return m, nil
}

// loadSuite reads the suite named by args, or the built-in one.
func loadSuite(args []string) (*suite.Suite, error) {
	if len(args) == 0 {
		return suite.LoadDefault()
	}
	return suite.LoadFile(args[0])
}

// loadConfig reads --config, or exercheck.toml in dir, and applies the
// configured color mode.
func loadConfig(dir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if !noColor && !jsonOutput {
		if err := ui.SetColorMode(cfg.Output.Color); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// requireCompiler fails fast when the compiler is not on PATH.
func requireCompiler(c toolchain.Compiler) error {
	if c.Available() {
		return nil
	}
	return &dagerrors.RunError{
		Type:    dagerrors.ToolNotFound,
		Message: fmt.Sprintf("compiler %q not found on PATH", c.Command),
		Hint:    "Install it, or set --compiler, $EXERCHECK_COMPILER or $CC",
	}
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
