// Package toolchain builds exercise sources into executables.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	dagerrors "github.com/stevehiehn/exercheck/internal/errors"
	"github.com/stevehiehn/exercheck/internal/runner"
)

// Compiler invokes an external C toolchain as
// <Command> <Flags...> <source> -o <output>.
type Compiler struct {
	Command string
	Flags   []string
}

// Args returns the argument vector passed to Command.
func (c Compiler) Args(source, output string) []string {
	args := append([]string{}, c.Flags...)
	return append(args, source, "-o", output)
}

// CommandLine renders the build command for explain and dry-run output.
func (c Compiler) CommandLine(source, output string) string {
	return strings.Join(append([]string{c.Command}, c.Args(source, output)...), " ")
}

// Available reports whether Command resolves on PATH.
func (c Compiler) Available() bool {
	_, err := exec.LookPath(c.Command)
	return err == nil
}

// Build compiles source into output inside dir. A non-zero exit yields a
// COMPILE_FAILED RunError carrying the toolchain's diagnostics.
func (c Compiler) Build(ctx context.Context, dir, source, output string) error {
	if c.Command == "" {
		return &dagerrors.RunError{Type: dagerrors.ToolNotFound, Message: "no compiler configured"}
	}
	res, err := runner.Run(ctx, runner.Invocation{
		Path: c.Command,
		Args: c.Args(source, output),
		Dir:  dir,
	})
	if err != nil {
		if re, ok := dagerrors.As(err); ok && re.Type == dagerrors.ToolNotFound {
			re.Message = fmt.Sprintf("compiler %q: %s", c.Command, re.Message)
			re.Hint = "Install the compiler or set --compiler / $CC"
		}
		return err
	}
	if res.ExitCode != 0 {
		diag := res.Stderr
		if strings.TrimSpace(diag) == "" {
			diag = res.Stdout
		}
		return dagerrors.NewCompileError(source, res.ExitCode, diag)
	}
	return nil
}
