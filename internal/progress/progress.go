// Package progress shows a bar while checks run.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/stevehiehn/exercheck/internal/logging"
	"github.com/stevehiehn/exercheck/internal/ui"
)

// Bar wraps progressbar with exercheck's display rules.
type Bar struct {
	bar     *progressbar.ProgressBar
	enabled bool
	desc    string
}

// Options configures the progress bar behavior.
type Options struct {
	Max         int64
	Description string
	Writer      io.Writer // defaults to os.Stderr
}

// New creates a progress bar. It renders only when colors are enabled,
// Writer is a terminal and debug logging is off; otherwise every method is
// a no-op.
func New(opts Options) *Bar {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	b := &Bar{enabled: shouldShowProgress(opts.Writer), desc: opts.Description}
	if !b.enabled {
		logging.Default().Debug(fmt.Sprintf("%s started", opts.Description), logging.Count(int(opts.Max)))
		return b
	}
	b.bar = progressbar.NewOptions64(
		opts.Max,
		progressbar.OptionSetDescription(opts.Description),
		progressbar.OptionSetWriter(opts.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(opts.Writer, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(ui.IsColorEnabled()),
		progressbar.OptionClearOnFinish(),
	)
	return b
}

// Enabled reports whether the bar renders.
func (b *Bar) Enabled() bool { return b.enabled }

// Add increments the bar by n steps.
func (b *Bar) Add(n int) error {
	if !b.enabled {
		return nil
	}
	return b.bar.Add(n)
}

// Describe updates the description.
func (b *Bar) Describe(desc string) {
	b.desc = desc
	if !b.enabled {
		return
	}
	b.bar.Describe(desc)
}

// Finish completes the bar.
func (b *Bar) Finish() error {
	if !b.enabled {
		logging.Default().Debug(fmt.Sprintf("%s completed", b.desc))
		return nil
	}
	return b.bar.Finish()
}

func shouldShowProgress(w io.Writer) bool {
	if !ui.IsColorEnabled() {
		return false
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	return !logging.Default().Enabled(context.Background(), logging.LevelDebug)
}
