package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	dagerrors "github.com/stevehiehn/exercheck/internal/errors"
	"github.com/stevehiehn/exercheck/internal/expect"
	"github.com/stevehiehn/exercheck/internal/logging"
	"github.com/stevehiehn/exercheck/internal/runner"
	"github.com/stevehiehn/exercheck/internal/suite"
	"github.com/stevehiehn/exercheck/internal/template"
)

// buildOnly passes when the source compiles.
type buildOnly struct{}

func (buildOnly) Check(context.Context, *Validator, *suite.Check, string, *CheckResult) error {
	return nil
}

func (buildOnly) Plan(*Validator, *suite.Check) ([]Planned, error) { return nil, nil }

// binaryCheck runs the program once and expects the reference integers.
type binaryCheck struct{}

func (binaryCheck) Plan(v *Validator, c *suite.Check) ([]Planned, error) {
	stdin, err := v.resolve(c.Binary.Stdin, nil)
	if err != nil {
		return nil, err
	}
	return []Planned{{Label: "run", Stdin: stdin}}, nil
}

func (k binaryCheck) Check(ctx context.Context, v *Validator, c *suite.Check, exe string, cr *CheckResult) error {
	plan, err := k.Plan(v, c)
	if err != nil {
		return err
	}
	res, err := v.Run(ctx, cr, plan[0].Label, runner.Invocation{Path: exe, Stdin: plan[0].Stdin, Timeout: v.timeout(c)})
	if err != nil {
		return err
	}
	cr.Failures = append(cr.Failures, expect.Evaluate(observe(v, res),
		expect.ContainsAllTokens(c.Binary.ExpectTokens(), "binary file output"))...)
	detected := len(cr.Failures) == 0
	cr.Detected = &detected
	return nil
}

// readCheck expects the file's words and word count, then an error
// message for a missing file.
type readCheck struct{}

func (readCheck) Plan(v *Validator, c *suite.Check) ([]Planned, error) {
	present, err := v.resolve(c.Read.Stdin, template.Vars{"file": c.Read.Fixture})
	if err != nil {
		return nil, err
	}
	missing, err := v.resolve(c.Read.Stdin, template.Vars{"file": c.Read.Missing})
	if err != nil {
		return nil, err
	}
	return []Planned{{Label: "existing file", Stdin: present}, {Label: "missing file", Stdin: missing}}, nil
}

func (k readCheck) Check(ctx context.Context, v *Validator, c *suite.Check, exe string, cr *CheckResult) error {
	plan, err := k.Plan(v, c)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(v.path(c.Read.Fixture))
	if err != nil {
		return &dagerrors.RunError{
			Type:    dagerrors.FixtureError,
			CheckID: c.ID,
			Message: fmt.Sprintf("reading fixture %s: %v", c.Read.Fixture, err),
		}
	}
	words := expect.Words(string(content))
	count := expect.WordCount(string(content))

	res, err := v.Run(ctx, cr, plan[0].Label, runner.Invocation{Path: exe, Stdin: plan[0].Stdin, Timeout: v.timeout(c)})
	if err != nil {
		return err
	}
	cr.Failures = append(cr.Failures, expect.Evaluate(observe(v, res),
		expect.ContainsToken(strconv.Itoa(count), "word count"),
		expect.ContainsAllSubstrings(words, "file content"),
	)...)

	res, err = v.Run(ctx, cr, plan[1].Label, runner.Invocation{Path: exe, Stdin: plan[1].Stdin, Timeout: v.timeout(c)})
	if err != nil {
		return err
	}
	cr.Failures = append(cr.Failures, expect.Evaluate(observe(v, res),
		expect.ContainsAnyFold(c.Read.ErrorTokens, "missing-file message"))...)
	return nil
}

// writeCheck overwrites a fresh target, then appends to it.
type writeCheck struct{}

func (writeCheck) Plan(v *Validator, c *suite.Check) ([]Planned, error) {
	w := c.Write
	var plan []Planned
	for _, step := range []struct {
		label string
		ws    suite.WriteStep
	}{{"overwrite", w.Overwrite}, {"append", w.Append}} {
		stdin, err := v.resolve(w.Stdin, template.Vars{"target": w.Target, "mode": step.ws.Mode, "text": step.ws.Text})
		if err != nil {
			return nil, err
		}
		plan = append(plan, Planned{Label: step.label, Stdin: stdin})
	}
	return plan, nil
}

func (k writeCheck) Check(ctx context.Context, v *Validator, c *suite.Check, exe string, cr *CheckResult) error {
	plan, err := k.Plan(v, c)
	if err != nil {
		return err
	}
	w := c.Write
	if err := v.remove(ctx, w.Target); err != nil {
		return &dagerrors.RunError{Type: dagerrors.FixtureError, CheckID: c.ID, Message: err.Error()}
	}
	defer v.remove(ctx, w.Target)

	res, err := v.Run(ctx, cr, plan[0].Label, runner.Invocation{Path: exe, Stdin: plan[0].Stdin, Timeout: v.timeout(c)})
	if err != nil {
		return err
	}
	cr.Failures = append(cr.Failures, expect.Evaluate(observe(v, res),
		expect.FileContainsTokens(w.Target, []string{w.Overwrite.Text}, "overwrite mode"))...)

	res, err = v.Run(ctx, cr, plan[1].Label, runner.Invocation{Path: exe, Stdin: plan[1].Stdin, Timeout: v.timeout(c)})
	if err != nil {
		return err
	}
	cr.Failures = append(cr.Failures, expect.Evaluate(observe(v, res),
		expect.FileContainsTokens(w.Target, []string{w.Overwrite.Text, w.Append.Text}, "append mode"))...)
	return nil
}

// menuCheck detects a menu and requires one of the valid choices to be
// accepted. Any zero exit counts as acceptance.
type menuCheck struct{}

func (menuCheck) Plan(v *Validator, c *suite.Check) ([]Planned, error) {
	m := c.Menu
	probe, err := v.resolve(m.Probe, template.Vars{"fixture": m.Fixture})
	if err != nil {
		return nil, err
	}
	plan := []Planned{{Label: "probe", Stdin: probe}}
	for _, choice := range m.Inputs {
		stdin, err := v.resolve(m.Stdin, template.Vars{"fixture": m.Fixture, "choice": choice})
		if err != nil {
			return nil, err
		}
		plan = append(plan, Planned{Label: "choice " + choice, Stdin: stdin})
	}
	return plan, nil
}

func (k menuCheck) Check(ctx context.Context, v *Validator, c *suite.Check, exe string, cr *CheckResult) error {
	plan, err := k.Plan(v, c)
	if err != nil {
		return err
	}
	m := c.Menu
	log := logging.FromContext(ctx).With(logging.Check(c.ID))

	res, err := v.Run(ctx, cr, plan[0].Label, runner.Invocation{
		Path:         exe,
		Stdin:        plan[0].Stdin,
		Timeout:      v.timeout(c),
		LineBuffered: v.rc.LineBuffered,
	})
	if err != nil {
		return err
	}
	token := expect.MatchAnyFold(res.Stdout, m.Tokens)
	detected := token != ""
	cr.Detected = &detected
	if !detected {
		cr.Failures = append(cr.Failures, "menu system not detected in output")
		return nil
	}
	log.Debug("menu detected", slog.String("token", token))

	inputTimeout := m.InputTimeout
	if inputTimeout <= 0 {
		inputTimeout = v.rc.MenuTimeout
	}
	accepted := false
	for _, p := range plan[1:] {
		res, err := v.Run(ctx, cr, p.Label, runner.Invocation{
			Path:         exe,
			Stdin:        p.Stdin,
			Timeout:      inputTimeout,
			LineBuffered: v.rc.LineBuffered,
		})
		if err != nil {
			if dagerrors.IsType(err, dagerrors.Timeout) {
				log.Debug("menu choice timed out", logging.Operation(p.Label))
				continue
			}
			return err
		}
		if len(expect.Evaluate(observe(v, res), expect.ExitZero(p.Label))) == 0 {
			accepted = true
		}
	}
	if !accepted {
		cr.Failures = append(cr.Failures, fmt.Sprintf("none of the inputs were accepted as valid: %v", m.Inputs))
	}
	return nil
}

func observe(v *Validator, res *runner.Result) expect.Observation {
	return expect.Observation{Stdout: res.Stdout, ExitCode: res.ExitCode, Dir: v.dir}
}
