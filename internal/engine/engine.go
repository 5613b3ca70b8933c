package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/stevehiehn/exercheck/internal/artifact"
	dagerrors "github.com/stevehiehn/exercheck/internal/errors"
	"github.com/stevehiehn/exercheck/internal/fixture"
	"github.com/stevehiehn/exercheck/internal/logging"
	"github.com/stevehiehn/exercheck/internal/runner"
	"github.com/stevehiehn/exercheck/internal/suite"
	"github.com/stevehiehn/exercheck/internal/template"
)

// Mode controls execution behavior.
type Mode int

const (
	ModeExplain Mode = iota
	ModeDryRun
	ModeRun
)

// Validator builds and drives the target programs of one suite. It owns
// every file it creates in the work directory and removes them in
// Teardown.
type Validator struct {
	suite    *suite.Suite
	rc       *RunContext
	dir      string
	vars     template.Vars
	fixtures *fixture.Set
	store    *artifact.Store
}

// NewValidator prepares a validator rooted at rc.WorkDir.
func NewValidator(s *suite.Suite, rc *RunContext) (*Validator, error) {
	dir, err := filepath.Abs(rc.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("resolving work dir: %w", err)
	}
	return &Validator{
		suite:    s,
		rc:       rc,
		dir:      dir,
		vars:     template.Merge(template.Vars(s.Vars), rc.Vars),
		fixtures: fixture.New(dir),
	}, nil
}

// PrepareFixtures writes the suite's fixture files.
func (v *Validator) PrepareFixtures(ctx context.Context) error {
	logging.FromContext(ctx).Debug("writing fixtures", logging.Count(len(v.suite.Fixtures)), logging.Path(v.dir))
	return v.fixtures.Prepare(v.suite.Fixtures)
}

// Build compiles the check's source and returns the executable path.
func (v *Validator) Build(ctx context.Context, c *suite.Check) (string, error) {
	log := logging.FromContext(ctx).With(logging.Check(c.ID))
	start := time.Now()
	err := v.rc.Compiler.Build(ctx, v.dir, c.Source, c.Executable())
	if err != nil {
		if re, ok := dagerrors.As(err); ok {
			re.CheckID = c.ID
		}
		log.Debug("build failed", logging.Path(c.Source), logging.Err(err))
		return "", err
	}
	log.Debug("built", logging.Path(c.Source), logging.Duration(time.Since(start)))
	return v.path(c.Executable()), nil
}

// Run executes one invocation in the work dir and records it on cr.
func (v *Validator) Run(ctx context.Context, cr *CheckResult, label string, inv runner.Invocation) (*runner.Result, error) {
	inv.Dir = v.dir
	res, err := runner.Run(ctx, inv)
	rec := Invocation{
		Label:    label,
		Stdin:    inv.Stdin,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		TimedOut: res.TimedOut,
		Duration: res.Duration.Round(time.Millisecond).String(),
	}
	cr.Invocations = append(cr.Invocations, rec)
	logging.FromContext(ctx).Debug("invocation",
		logging.Check(cr.ID), logging.Operation(label),
		"exit_code", res.ExitCode, "timed_out", res.TimedOut)

	if v.store != nil {
		if werr := v.store.WriteInvocation(cr.ID, len(cr.Invocations), inv.Stdin, res.Stdout, res.Stderr); werr != nil {
			logging.FromContext(ctx).Warn("recording invocation", logging.Check(cr.ID), logging.Err(werr))
		}
	}
	if re, ok := dagerrors.As(err); ok {
		re.CheckID = cr.ID
	}
	return res, err
}

// Teardown removes fixtures, every executable the suite names and all
// scratch files. Absent files are ignored.
func (v *Validator) Teardown(ctx context.Context) {
	extra := append(v.suite.Executables(), v.suite.Scratch...)
	if err := v.fixtures.Teardown(extra...); err != nil {
		logging.FromContext(ctx).Warn("teardown", logging.Path(v.dir), logging.Err(err))
	}
}

func (v *Validator) remove(ctx context.Context, names ...string) error {
	err := v.fixtures.Remove(names...)
	if err != nil {
		logging.FromContext(ctx).Warn("removing files", logging.Err(err))
	}
	return err
}

func (v *Validator) resolve(tmpl string, builtin template.Vars) (string, error) {
	return template.Resolve(tmpl, template.Merge(v.vars, builtin))
}

func (v *Validator) timeout(c *suite.Check) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return v.rc.Timeout
}

func (v *Validator) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(v.dir, name)
}

// Execute runs a suite in the given mode. Checks run in order; a passing
// bonus check marks the checks it covers as skipped.
func Execute(ctx context.Context, s *suite.Suite, rc *RunContext, mode Mode) (*Result, error) {
	v, err := NewValidator(s, rc)
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx).With(logging.RunID(rc.RunID))
	result := &Result{RunID: rc.RunID, Suite: s.Name, Success: true}

	switch mode {
	case ModeRun:
		if rc.Record {
			v.store, err = artifact.New(rc.RunID, v.dir)
			if err != nil {
				return nil, err
			}
			result.Artifacts = []string{v.store.BaseDir}
		}
		defer v.Teardown(ctx)
		if err := v.PrepareFixtures(ctx); err != nil {
			return nil, err
		}
	case ModeDryRun:
		for name := range s.Fixtures {
			result.Fixtures = append(result.Fixtures, name)
		}
		sort.Strings(result.Fixtures)
	}

	coveredBy := map[string]string{}
	for i := range s.Checks {
		c := &s.Checks[i]
		cr := CheckResult{
			ID:         c.ID,
			Kind:       c.Kind,
			Bonus:      c.Bonus,
			Name:       c.Name,
			Executable: c.Executable(),
		}

		switch {
		case ctx.Err() != nil:
			cr.Status = StatusSkipped
			cr.Reason = "cancelled"
		case !rc.selected(c.ID):
			cr.Status = StatusSkipped
			cr.Reason = "not selected"
		case coveredBy[c.ID] != "":
			cr.Status = StatusSkipped
			cr.Reason = fmt.Sprintf("covered by bonus check %q", coveredBy[c.ID])
			log.Info("skipping covered check", logging.Check(c.ID), "bonus", coveredBy[c.ID])
		default:
			if err := v.executeCheck(ctx, c, mode, &cr, result); err != nil {
				return nil, err
			}
		}

		if mode == ModeRun && c.Bonus && cr.Status == StatusPassed {
			for _, ref := range c.Covers {
				coveredBy[ref] = c.ID
			}
		}
		result.add(cr)
		if rc.OnCheck != nil {
			rc.OnCheck(cr)
		}
	}

	if err := ctx.Err(); err != nil {
		result.Success = false
		result.Errors = append(result.Errors, dagerrors.RunError{Type: dagerrors.Cancelled, Message: err.Error()})
	}

	if v.store != nil {
		if err := v.store.WriteResult(result); err != nil {
			log.Warn("recording result", logging.Err(err))
		}
	}
	return result, nil
}

func (v *Validator) executeCheck(ctx context.Context, c *suite.Check, mode Mode, cr *CheckResult, result *Result) error {
	kind, err := Get(c.Kind)
	if err != nil {
		return &dagerrors.RunError{Type: dagerrors.ValidationError, CheckID: c.ID, Message: err.Error()}
	}
	cr.Command = v.rc.Compiler.CommandLine(c.Source, c.Executable())

	if mode == ModeExplain || mode == ModeDryRun {
		plan, err := kind.Plan(v, c)
		if err != nil {
			return fmt.Errorf("resolving stdin for check %q: %w", c.ID, err)
		}
		for _, p := range plan {
			cr.Invocations = append(cr.Invocations, Invocation{Label: p.Label, Stdin: p.Stdin})
		}
		if mode == ModeExplain {
			cr.Status = StatusExplain
		} else {
			cr.Status = StatusDryRun
			cr.DryRunInfo = fmt.Sprintf("Would build with %q, then run %d invocation(s)", cr.Command, len(plan))
		}
		if len(c.Covers) > 0 {
			cr.Reason = "covers " + strings.Join(c.Covers, ", ")
		}
		return nil
	}

	start := time.Now()
	defer func() {
		cr.Duration = time.Since(start).Round(time.Millisecond).String()
		// Scratch files never outlive a check.
		_ = v.remove(ctx, v.suite.Scratch...)
	}()

	exe, err := v.Build(ctx, c)
	if err == nil {
		err = kind.Check(ctx, v, c, exe, cr)
	}
	if err != nil {
		cr.Status = StatusFailed
		re, ok := dagerrors.As(err)
		if !ok {
			re = dagerrors.NewCheckError(c.ID, err.Error(), "")
		}
		cr.Failures = append(cr.Failures, re.Message)
		result.Errors = append(result.Errors, *re)
		return nil
	}

	if len(cr.Failures) > 0 {
		cr.Status = StatusFailed
		result.Errors = append(result.Errors, *dagerrors.NewExpectationError(c.ID, strings.Join(cr.Failures, "; ")))
		return nil
	}
	cr.Status = StatusPassed
	return nil
}
