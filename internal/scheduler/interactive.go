package scheduler

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/Jordan-Sun/geos-chem/internal/command"
	"github.com/Jordan-Sun/geos-chem/internal/template"
	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// InteractiveBackend runs the compile stage in the foreground.
// Scripts are left untouched and job.Dir is ignored: the script runs in the
// orchestrator's own working directory.
type InteractiveBackend struct {
	runner command.Commander
}

func NewInteractiveBackend(runner command.Commander) *InteractiveBackend {
	return &InteractiveBackend{runner: runner}
}

func (i *InteractiveBackend) Type() Type { return TypeNone }

func (i *InteractiveBackend) RunsExecuteStage() bool { return false }

func (i *InteractiveBackend) Specialize(t *template.Template, _ string) *template.Template {
	return t
}

// Submit runs the compile script and waits for it. Its output streams to the
// operator's terminal.
func (i *InteractiveBackend) Submit(ctx context.Context, job Job) (*SubmissionRecord, error) {
	if job.Stage != StageCompile {
		return nil, NewSubmissionError(TypeNone, job, "", fmt.Errorf("%w: %s", ErrStageNotSupported, job.Stage))
	}
	if err := requireScript(TypeNone, job); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, job.Script)
	cmd.Stdout = utils.Stdout()
	cmd.Stderr = utils.Stderr()
	if err := i.runner.Run(cmd); err != nil {
		if code := command.ExitCode(err); code >= 0 {
			err = fmt.Errorf("compile script exited with status %d: %w", code, err)
		}
		return nil, NewSubmissionError(TypeNone, job, "", err)
	}
	return &SubmissionRecord{Stage: job.Stage}, nil
}
