package provision

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotEmpty indicates the root directory already holds entries.
	ErrRootNotEmpty = errors.New("root directory is not empty")

	// ErrRootLocked indicates another orchestrator holds the root directory.
	ErrRootLocked = errors.New("root directory is in use by another run")

	// ErrMissingScript indicates the creation tool did not produce a required script.
	ErrMissingScript = errors.New("required script missing")

	// ErrInvalidEnvFile indicates the environment file is absent or not a regular file.
	ErrInvalidEnvFile = errors.New("environment file is not a regular file")
)

// ProvisioningError reports a failure while preparing the run directories.
type ProvisioningError struct {
	Op   string // resolve, lock, create or scan
	Path string
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning failed (%s) for %s: %v", e.Op, e.Path, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// IsProvisioningError checks if an error is a ProvisioningError
func IsProvisioningError(err error) bool {
	var pe *ProvisioningError
	return errors.As(err, &pe)
}
