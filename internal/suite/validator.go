package suite

import (
	"fmt"
	"time"

	dagerrors "github.com/stevehiehn/exercheck/internal/errors"
	"github.com/stevehiehn/exercheck/internal/template"
)

var knownKinds = map[string]bool{
	KindBuild:  true,
	KindRead:   true,
	KindWrite:  true,
	KindMenu:   true,
	KindBinary: true,
}

// builtinVars are the per-check template variables supplied by the engine.
var builtinVars = map[string]bool{
	"fixture": true,
	"file":    true,
	"target":  true,
	"mode":    true,
	"text":    true,
	"choice":  true,
}

// Validate checks a suite for structural correctness. extraVars are
// variables supplied on the command line and may be nil.
func Validate(s *Suite, extraVars map[string]string) error {
	sources := map[string]string{}
	for _, c := range s.Checks {
		if _, ok := sources[c.Source]; !ok {
			sources[c.Source] = c.ID
		}
	}

	seen := map[string]int{}
	for i, c := range s.Checks {
		if c.ID == "" {
			return &dagerrors.RunError{
				Type:    dagerrors.ValidationError,
				Message: fmt.Sprintf("check at index %d has no id", i),
			}
		}
		if _, dup := seen[c.ID]; dup {
			return &dagerrors.RunError{
				Type:    dagerrors.ValidationError,
				Message: fmt.Sprintf("duplicate check id %q", c.ID),
			}
		}
		seen[c.ID] = i

		if !knownKinds[c.Kind] {
			return &dagerrors.RunError{
				Type:    dagerrors.ValidationError,
				CheckID: c.ID,
				Message: fmt.Sprintf("unknown kind %q", c.Kind),
				Hint:    "Known kinds: build, read, write, menu, binary",
			}
		}
		if c.Source == "" {
			return &dagerrors.RunError{
				Type:    dagerrors.ValidationError,
				CheckID: c.ID,
				Message: "no source file",
			}
		}
		if len(c.Covers) > 0 && !c.Bonus {
			return &dagerrors.RunError{
				Type:    dagerrors.ValidationError,
				CheckID: c.ID,
				Message: "only bonus checks may cover other checks",
				Hint:    "Set bonus: true or remove covers",
			}
		}

		if err := validateOutput(s, c, sources); err != nil {
			return err
		}
		for _, d := range []time.Duration{c.Timeout, menuTimeout(c)} {
			if d != 0 && d < minTimeout {
				return &dagerrors.RunError{
					Type:    dagerrors.ValidationError,
					CheckID: c.ID,
					Message: fmt.Sprintf("timeout %s is below %s", d, minTimeout),
					Hint:    "Durations need a unit, e.g. 5s or 750ms",
				}
			}
		}

		for _, fx := range fixtureRefs(c) {
			if _, ok := s.Fixtures[fx]; !ok {
				return &dagerrors.RunError{
					Type:    dagerrors.ValidationError,
					CheckID: c.ID,
					Message: fmt.Sprintf("references undeclared fixture %q", fx),
				}
			}
		}

		for _, tmpl := range stdinTemplates(c) {
			for _, name := range template.Refs(tmpl) {
				if builtinVars[name] {
					continue
				}
				if _, ok := s.Vars[name]; ok {
					continue
				}
				if _, ok := extraVars[name]; ok {
					continue
				}
				return &dagerrors.RunError{
					Type:    dagerrors.ValidationError,
					CheckID: c.ID,
					Message: fmt.Sprintf("stdin references unknown variable %q", name),
					Hint:    fmt.Sprintf("Declare it under vars or pass --var %s=<value>", name),
				}
			}
		}
	}

	// Covered checks must run after the bonus check that covers them.
	for i, c := range s.Checks {
		for _, ref := range c.Covers {
			idx, ok := seen[ref]
			if !ok {
				return &dagerrors.RunError{
					Type:    dagerrors.ValidationError,
					CheckID: c.ID,
					Message: fmt.Sprintf("covers unknown check %q", ref),
				}
			}
			if idx <= i {
				return &dagerrors.RunError{
					Type:    dagerrors.ValidationError,
					CheckID: c.ID,
					Message: fmt.Sprintf("covers check %q which runs before it", ref),
					Hint:    "List bonus checks before the checks they cover",
				}
			}
		}
	}
	return nil
}

// minTimeout is the smallest per-check timeout accepted.
const minTimeout = time.Millisecond

// validateOutput rejects build outputs that would overwrite, and then be
// removed in place of, a source or fixture file.
func validateOutput(s *Suite, c Check, sources map[string]string) error {
	exe := c.Executable()
	var clash string
	switch {
	case exe == c.Source:
		clash = "its own source"
	case sources[exe] != "":
		clash = fmt.Sprintf("the source of check %q", sources[exe])
	default:
		if _, ok := s.Fixtures[exe]; ok {
			clash = "a fixture"
		}
	}
	if clash == "" {
		return nil
	}
	re := dagerrors.NewValidationError(
		fmt.Sprintf("executable %q would replace %s", exe, clash),
		"Give the source a .c extension or set output to a distinct name",
	)
	re.CheckID = c.ID
	return re
}

func menuTimeout(c Check) time.Duration {
	if c.Menu == nil {
		return 0
	}
	return c.Menu.InputTimeout
}

func fixtureRefs(c Check) []string {
	var refs []string
	if c.Kind == KindRead && c.Read != nil {
		refs = append(refs, c.Read.Fixture)
	}
	if c.Kind == KindMenu && c.Menu != nil {
		refs = append(refs, c.Menu.Fixture)
	}
	return refs
}

func stdinTemplates(c Check) []string {
	var strs []string
	if c.Read != nil {
		strs = append(strs, c.Read.Stdin)
	}
	if c.Write != nil {
		strs = append(strs, c.Write.Stdin)
	}
	if c.Menu != nil {
		strs = append(strs, c.Menu.Probe, c.Menu.Stdin)
	}
	if c.Binary != nil {
		strs = append(strs, c.Binary.Stdin)
	}
	return strs
}
