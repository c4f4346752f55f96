package pipeline

import (
	"errors"
	"fmt"

	"github.com/Jordan-Sun/geos-chem/internal/scheduler"
)

var (
	ErrMissingDirectory = errors.New("root directory not specified")
	ErrMissingEnvFile   = errors.New("environment file not specified")
	ErrMissingPartition = errors.New("partition is required when a batch scheduler is selected")
)

// Options is one orchestration request. It is built once from the command
// line and not changed afterwards.
type Options struct {
	RootDir   string
	EnvFile   string
	Scheduler scheduler.Type
	Partition string
	Quick     bool
}

// Validate checks the request before anything touches the filesystem.
func (o Options) Validate() error {
	if o.RootDir == "" {
		return ErrMissingDirectory
	}
	if o.EnvFile == "" {
		return ErrMissingEnvFile
	}
	switch o.Scheduler {
	case scheduler.TypeNone, scheduler.TypeSLURM, scheduler.TypeLSF:
	default:
		return fmt.Errorf("%w: %q", scheduler.ErrUnknownScheduler, string(o.Scheduler))
	}
	if o.Scheduler.IsBatch() && o.Partition == "" {
		return ErrMissingPartition
	}
	return nil
}
