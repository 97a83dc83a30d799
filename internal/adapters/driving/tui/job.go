package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/protokoll/internal/adapters/driving/tui/views/progress"
)

// Sender delivers messages to a running program.
type Sender interface {
	Send(msg tea.Msg)
}

// Reporter forwards job progress to the progress view.
type Reporter struct {
	sender Sender
}

// NewReporter creates a reporter that sends to s.
func NewReporter(s Sender) *Reporter {
	return &Reporter{sender: s}
}

// Progress updates the bar and the status line.
func (r *Reporter) Progress(message string, completed, total int) {
	r.sender.Send(messages.ProgressUpdated{Message: message, Completed: completed, Total: total})
}

// Warn shows a non-fatal problem below the bar.
func (r *Reporter) Warn(message string) {
	r.sender.Send(messages.WarningRaised{Message: message})
}

// Job is a unit of work shown with a progress view.
type Job func(ctx context.Context, r *Reporter) error

// RunJob runs job while rendering its progress. Quitting the view cancels
// the job's context; RunJob always waits for the job to return.
func RunJob(ctx context.Context, title string, job Job) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view := progress.NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), title, cancel)
	program := tea.NewProgram(view)

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("job panicked: %v", r)
				program.Send(messages.JobFinished{Err: fmt.Errorf("job panicked: %v", r)})
			}
		}()
		jobErr := job(ctx, NewReporter(program))
		done <- jobErr
		program.Send(messages.JobFinished{Err: jobErr})
	}()

	if _, runErr := program.Run(); runErr != nil {
		cancel()
		<-done
		return fmt.Errorf("progress view: %w", runErr)
	}
	jobErr := <-done
	if jobErr == nil && view.Cancelling() {
		return ErrJobCancelled
	}
	return jobErr
}
