package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui"
)

// progressSink receives progress from a pipeline stage.
type progressSink interface {
	Progress(message string, completed, total int)
	Warn(message string)
}

// textSink prints progress lines, skipping repeats of the last message.
type textSink struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func (s *textSink) Progress(message string, _, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message == "" || message == s.last {
		return
	}
	s.last = message
	fmt.Fprintln(s.out, message)
}

func (s *textSink) Warn(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, "warning: "+message)
}

// withProgress runs job, rendering progress in the terminal UI when useTUI
// is set and as plain lines on stderr otherwise.
func withProgress(
	cmd *cobra.Command,
	title string,
	useTUI bool,
	job func(ctx context.Context, sink progressSink) error,
) error {
	if useTUI {
		return tui.RunJob(cmd.Context(), title, func(ctx context.Context, r *tui.Reporter) error {
			return job(ctx, r)
		})
	}
	return job(cmd.Context(), &textSink{out: cmd.ErrOrStderr()})
}
