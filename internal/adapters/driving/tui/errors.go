package tui

import "errors"

// ErrMissingRunService is returned when the run service is not provided.
var ErrMissingRunService = errors.New("tui: run service is required")

// ErrJobCancelled is returned by RunJob when the user quits before the job ends.
var ErrJobCancelled = errors.New("tui: job cancelled")
