// Package scheduler submits integration-test stages to a batch scheduler
// (SLURM, LSF) or runs them in the foreground when no scheduler is used.
package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jordan-Sun/geos-chem/internal/command"
	"github.com/Jordan-Sun/geos-chem/internal/config"
	"github.com/Jordan-Sun/geos-chem/internal/template"
)

// Type represents the execution environment.
type Type string

const (
	TypeNone  Type = "NONE" // interactive, no batch scheduler
	TypeSLURM Type = "SLURM"
	TypeLSF   Type = "LSF"
)

// ParseType converts user input to a Type. Matching is case-insensitive and
// an empty string selects interactive mode.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(TypeNone):
		return TypeNone, nil
	case string(TypeSLURM):
		return TypeSLURM, nil
	case string(TypeLSF):
		return TypeLSF, nil
	default:
		return TypeNone, fmt.Errorf("%w: %q (expected SLURM or LSF)", ErrUnknownScheduler, s)
	}
}

// IsBatch reports whether jobs are handed to an external scheduler.
func (t Type) IsBatch() bool {
	return t == TypeSLURM || t == TypeLSF
}

// Stage is one phase of an integration test.
type Stage string

const (
	StageCompile Stage = "compile"
	StageExecute Stage = "execute"
)

// Job describes one submission.
type Job struct {
	Script    string // Absolute path to the stage script
	Stage     Stage  // Stage the script implements
	Dir       string // Working directory for the submission tool (batch modes)
	DependsOn string // Job ID that must finish successfully first (empty = none)
}

// SubmissionRecord is what a backend reports for a submitted stage.
type SubmissionRecord struct {
	JobID     string // Scheduler-assigned ID; empty for interactive runs
	Stage     Stage
	DependsOn string
}

// Backend is one execution environment.
type Backend interface {
	// Type identifies the backend.
	Type() Type

	// Specialize adapts a neutral script template to this backend.
	Specialize(t *template.Template, partition string) *template.Template

	// Submit hands a stage to the backend and returns its record.
	Submit(ctx context.Context, job Job) (*SubmissionRecord, error)

	// RunsExecuteStage reports whether the execute stage is submitted by the
	// orchestrator. Interactive runs leave it to a manual step.
	RunsExecuteStage() bool
}

// New builds the backend for t from settings. Processes are run through runner.
func New(t Type, settings config.Settings, runner command.Commander) (Backend, error) {
	if runner == nil {
		runner = command.ExecCommander{}
	}
	switch t {
	case TypeSLURM:
		return NewSlurmBackend(settings.Slurm, settings.Placeholder, runner), nil
	case TypeLSF:
		return NewLsfBackend(settings.Lsf, settings.Placeholder, runner), nil
	case TypeNone:
		return NewInteractiveBackend(runner), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheduler, string(t))
	}
}
