package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/stevehiehn/exercheck/internal/config"
	"github.com/stevehiehn/exercheck/internal/template"
	"github.com/stevehiehn/exercheck/internal/toolchain"
)

// RunContext holds settings for one suite execution.
type RunContext struct {
	RunID        string
	WorkDir      string
	Vars         template.Vars // command-line overrides of suite vars
	Compiler     toolchain.Compiler
	Timeout      time.Duration // per invocation, unless the check sets one
	MenuTimeout  time.Duration // per menu choice, unless the check sets one
	LineBuffered bool
	Record       bool
	Only         []string // check ids to run; empty runs all

	// OnCheck, if set, is called after each check completes.
	OnCheck func(CheckResult)
}

// NewRunContext creates a context from configuration.
func NewRunContext(workDir string, vars map[string]string, cfg *config.Config) *RunContext {
	if cfg == nil {
		cfg = config.Default()
	}
	return &RunContext{
		RunID:        uuid.New().String(),
		WorkDir:      workDir,
		Vars:         template.Vars(vars),
		Compiler:     toolchain.Compiler{Command: cfg.Compiler.Command, Flags: cfg.Compiler.Flags},
		Timeout:      cfg.Timeouts.Default,
		MenuTimeout:  cfg.Timeouts.MenuInput,
		LineBuffered: cfg.Run.LineBuffered,
		Record:       cfg.Run.Record,
	}
}

func (rc *RunContext) selected(id string) bool {
	if len(rc.Only) == 0 {
		return true
	}
	for _, o := range rc.Only {
		if o == id {
			return true
		}
	}
	return false
}
