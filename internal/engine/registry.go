package engine

import (
	"context"
	"fmt"

	"github.com/stevehiehn/exercheck/internal/suite"
)

// Planned is an invocation a check intends to make.
type Planned struct {
	Label string
	Stdin string
}

// Kind grades one category of exercise program.
type Kind interface {
	// Check drives the built executable and records unmet expectations in
	// cr.Failures. A returned error aborts the check.
	Check(ctx context.Context, v *Validator, c *suite.Check, exe string, cr *CheckResult) error
	// Plan lists the invocations Check would make, for explain and dry-run.
	Plan(v *Validator, c *suite.Check) ([]Planned, error)
}

var registry = map[string]Kind{}

func init() {
	registry[suite.KindBuild] = buildOnly{}
	registry[suite.KindRead] = readCheck{}
	registry[suite.KindWrite] = writeCheck{}
	registry[suite.KindMenu] = menuCheck{}
	registry[suite.KindBinary] = binaryCheck{}
}

// Get returns a kind by name.
func Get(name string) (Kind, error) {
	k, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown check kind %q", name)
	}
	return k, nil
}
