package runner

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	dagerrors "github.com/stevehiehn/exercheck/internal/errors"
)

// Invocation describes one execution of a target program.
type Invocation struct {
	Path         string
	Args         []string
	Stdin        string
	Dir          string
	Timeout      time.Duration // zero means no limit beyond ctx
	LineBuffered bool          // wrap with stdbuf -oL when available
}

// Result holds the captured output of an invocation.
type Result struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	TimedOut bool          `json:"timed_out,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Run executes inv, feeding Stdin and capturing output. A process that
// outlives its timeout is killed; the partial Result is returned together
// with a TIMEOUT RunError. Cancellation of ctx yields a CANCELLED RunError.
func Run(ctx context.Context, inv Invocation) (*Result, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	name, args := inv.Path, inv.Args
	if inv.LineBuffered {
		if stdbuf, err := exec.LookPath("stdbuf"); err == nil {
			name, args = stdbuf, append([]string{"-oL", inv.Path}, inv.Args...)
		}
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}
	cmd.Stdin = strings.NewReader(inv.Stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children that inherit the pipes must not keep Wait blocked after a kill.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.ExitCode = -1
		if ctxErr == context.DeadlineExceeded && inv.Timeout > 0 {
			res.TimedOut = true
			return res, dagerrors.NewTimeoutError(inv.Path, inv.Timeout)
		}
		return res, &dagerrors.RunError{Type: dagerrors.Cancelled, Message: ctxErr.Error()}
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, &dagerrors.RunError{
			Type:    dagerrors.ToolNotFound,
			Message: err.Error(),
			Hint:    "Check that the executable exists and is runnable",
		}
	}
	return res, nil
}
