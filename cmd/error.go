package cmd

import "errors"

// UsageError reports a command line that cannot be run. It is printed
// together with the usage text.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// IsUsageError checks if an error is a UsageError
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}
