package scheduler

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrUnknownScheduler indicates an unsupported scheduler name
	ErrUnknownScheduler = errors.New("unknown scheduler")

	// ErrJobIDParseFailed indicates parsing job ID from output failed
	ErrJobIDParseFailed = errors.New("failed to parse job ID from scheduler output")

	// ErrStageNotSupported indicates a backend was asked to run a stage it does not handle
	ErrStageNotSupported = errors.New("stage not supported by backend")
)

// SubmissionError represents an error during job submission
type SubmissionError struct {
	Scheduler Type   // Scheduler name
	Stage     Stage  // Stage being submitted
	Script    string // Script path
	Output    string // Scheduler output
	Err       error  // Underlying error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s %s submission failed for %s: %v\nOutput: %s",
			e.Scheduler, e.Stage, e.Script, e.Err, e.Output)
	}
	return fmt.Sprintf("%s %s submission failed for %s: %v",
		e.Scheduler, e.Stage, e.Script, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(scheduler Type, job Job, output string, err error) *SubmissionError {
	return &SubmissionError{
		Scheduler: scheduler,
		Stage:     job.Stage,
		Script:    job.Script,
		Output:    output,
		Err:       err,
	}
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
