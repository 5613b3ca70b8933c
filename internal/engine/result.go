package engine

import dagerrors "github.com/stevehiehn/exercheck/internal/errors"

// Check statuses.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusExplain = "explain"
	StatusDryRun  = "dry-run"
)

// Result is the structured output of a suite execution.
type Result struct {
	RunID     string               `json:"run_id"`
	Suite     string               `json:"suite"`
	Success   bool                 `json:"success"`
	Passed    int                  `json:"passed"`
	Failed    int                  `json:"failed"`
	Skipped   int                  `json:"skipped"`
	Fixtures  []string             `json:"fixtures,omitempty"` // dry-run: files that would be written
	Checks    []CheckResult        `json:"checks"`
	Artifacts []string             `json:"artifacts,omitempty"`
	Errors    []dagerrors.RunError `json:"errors,omitempty"`
}

// CheckResult describes the outcome of a single check.
type CheckResult struct {
	ID          string       `json:"id"`
	Kind        string       `json:"kind"`
	Status      string       `json:"status"`
	Bonus       bool         `json:"bonus,omitempty"`
	Detected    *bool        `json:"detected,omitempty"` // bonus feature found in output
	Reason      string       `json:"reason,omitempty"`   // why the check was skipped
	Failures    []string     `json:"failures,omitempty"` // unmet expectations
	Invocations []Invocation `json:"invocations,omitempty"`
	Executable  string       `json:"executable,omitempty"`
	Command     string       `json:"command,omitempty"` // build command
	Duration    string       `json:"duration,omitempty"`
	Name        string       `json:"name,omitempty"`
	DryRunInfo  string       `json:"dry_run_info,omitempty"`
}

// Invocation is one recorded (or, in explain modes, planned) run.
type Invocation struct {
	Label    string `json:"label"`
	Stdin    string `json:"stdin"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_code"`
	TimedOut bool   `json:"timed_out,omitempty"`
	Duration string `json:"duration,omitempty"`
}

func (r *Result) add(cr CheckResult) {
	r.Checks = append(r.Checks, cr)
	switch cr.Status {
	case StatusPassed:
		r.Passed++
	case StatusFailed:
		r.Failed++
		if !cr.Bonus {
			r.Success = false
		}
	case StatusSkipped:
		r.Skipped++
	}
}

// Check returns the result for id.
func (r *Result) Check(id string) (CheckResult, bool) {
	for _, cr := range r.Checks {
		if cr.ID == id {
			return cr, true
		}
	}
	return CheckResult{}, false
}
