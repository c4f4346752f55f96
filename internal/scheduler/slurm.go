package scheduler

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/Jordan-Sun/geos-chem/internal/command"
	"github.com/Jordan-Sun/geos-chem/internal/config"
	"github.com/Jordan-Sun/geos-chem/internal/template"
)

// SlurmBackend submits stages with sbatch.
type SlurmBackend struct {
	sbatchBin   string
	placeholder string
	rule        FieldRule
	runner      command.Commander
}

// NewSlurmBackend creates a SLURM backend.
func NewSlurmBackend(s config.SchedulerSettings, placeholder string, runner command.Commander) *SlurmBackend {
	return &SlurmBackend{
		sbatchBin:   s.SubmitBin,
		placeholder: placeholder,
		rule:        FieldRule{Field: s.JobIDField},
		runner:      runner,
	}
}

func (s *SlurmBackend) Type() Type { return TypeSLURM }

func (s *SlurmBackend) RunsExecuteStage() bool { return true }

// Specialize removes the LSF directives and fills in the partition.
func (s *SlurmBackend) Specialize(t *template.Template, partition string) *template.Template {
	return t.Drop(template.LsfDirective).Substitute(s.placeholder, partition)
}

// DependencyArg returns the sbatch option that holds a job until jobID
// completes successfully.
func (s *SlurmBackend) DependencyArg(jobID string) string {
	return fmt.Sprintf("--dependency=afterok:%s", jobID)
}

// Submit runs "sbatch [--dependency=afterok:ID] script" from job.Dir.
func (s *SlurmBackend) Submit(ctx context.Context, job Job) (*SubmissionRecord, error) {
	if err := requireScript(TypeSLURM, job); err != nil {
		return nil, err
	}

	var args []string
	if job.DependsOn != "" {
		args = append(args, s.DependencyArg(job.DependsOn))
	}
	args = append(args, job.Script)

	cmd := exec.CommandContext(ctx, s.sbatchBin, args...)
	cmd.Dir = job.Dir
	return submitBatch(ctx, s.runner, TypeSLURM, job, cmd, s.rule)
}
