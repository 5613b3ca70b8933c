// Package config loads harness settings from exercheck.toml, environment
// variables and defaults, in increasing order of precedence: defaults,
// file, environment. Command-line flags are applied by the caller.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the config file looked up in the work directory.
const FileName = "exercheck.toml"

// Config is the complete harness configuration.
type Config struct {
	Compiler CompilerConfig `toml:"compiler"`
	Timeouts TimeoutsConfig `toml:"timeouts"`
	Run      RunConfig      `toml:"run"`
	Output   OutputConfig   `toml:"output"`
}

// CompilerConfig selects the C toolchain.
type CompilerConfig struct {
	Command string   `toml:"command"`
	Flags   []string `toml:"flags"`
}

// TimeoutsConfig bounds how long target programs may run.
type TimeoutsConfig struct {
	// Default applies to every invocation without a per-check timeout.
	Default time.Duration `toml:"default"`
	// MenuInput caps each menu choice invocation.
	MenuInput time.Duration `toml:"menu_input"`
}

// RunConfig controls execution behavior.
type RunConfig struct {
	// LineBuffered runs menu probes through stdbuf -oL.
	LineBuffered bool `toml:"line_buffered"`
	// Record keeps invocation output under .exercheck/runs.
	Record bool `toml:"record"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color is auto, always or never.
	Color string `toml:"color"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Compiler: CompilerConfig{Command: "gcc"},
		Timeouts: TimeoutsConfig{
			Default:   10 * time.Second,
			MenuInput: 5 * time.Second,
		},
		Run:    RunConfig{LineBuffered: true},
		Output: OutputConfig{Color: "auto"},
	}
}

// Load reads FileName from dir over defaults. A missing file is not an
// error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnvironment()
	return cfg, nil
}

// applyEnvironment applies EXERCHECK_* overrides. $CC is honored when
// EXERCHECK_COMPILER is unset.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("EXERCHECK_COMPILER"); v != "" {
		c.Compiler.Command = v
	} else if v := os.Getenv("CC"); v != "" {
		c.Compiler.Command = v
	}
	if v := os.Getenv("EXERCHECK_CFLAGS"); v != "" {
		c.Compiler.Flags = strings.Fields(v)
	}
	if v := os.Getenv("EXERCHECK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Timeouts.Default = d
		}
	}
	if v := os.Getenv("EXERCHECK_MENU_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Timeouts.MenuInput = d
		}
	}
	if v := os.Getenv("EXERCHECK_LINE_BUFFERED"); v != "" {
		c.Run.LineBuffered = parseBool(v)
	}
	if v := os.Getenv("EXERCHECK_RECORD"); v != "" {
		c.Run.Record = parseBool(v)
	}
	if v := os.Getenv("EXERCHECK_COLOR"); v != "" {
		c.Output.Color = v
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
