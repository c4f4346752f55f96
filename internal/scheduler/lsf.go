package scheduler

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/Jordan-Sun/geos-chem/internal/command"
	"github.com/Jordan-Sun/geos-chem/internal/config"
	"github.com/Jordan-Sun/geos-chem/internal/template"
)

// LsfBackend submits stages with bsub.
type LsfBackend struct {
	bsubBin     string
	placeholder string
	rule        FieldRule
	runner      command.Commander
}

// NewLsfBackend creates an LSF backend.
// bsub reports IDs as "Job <6789> ...", so the brackets are trimmed.
func NewLsfBackend(s config.SchedulerSettings, placeholder string, runner command.Commander) *LsfBackend {
	return &LsfBackend{
		bsubBin:     s.SubmitBin,
		placeholder: placeholder,
		rule:        FieldRule{Field: s.JobIDField, Trim: "<>"},
		runner:      runner,
	}
}

func (l *LsfBackend) Type() Type { return TypeLSF }

func (l *LsfBackend) RunsExecuteStage() bool { return true }

// Specialize removes the SLURM directives and fills in the partition.
func (l *LsfBackend) Specialize(t *template.Template, partition string) *template.Template {
	return t.Drop(template.SlurmDirective).Substitute(l.placeholder, partition)
}

// DependencyArg returns the bsub options that hold a job until jobID exits with status 0.
func (l *LsfBackend) DependencyArg(jobID string) []string {
	return []string{"-w", fmt.Sprintf("exit(%s,0)", jobID)}
}

// Submit runs "bsub [-w "exit(ID,0)"] < script" from job.Dir.
// bsub only honours #BSUB directives when the script arrives on stdin.
func (l *LsfBackend) Submit(ctx context.Context, job Job) (*SubmissionRecord, error) {
	if err := requireScript(TypeLSF, job); err != nil {
		return nil, err
	}

	f, err := os.Open(job.Script)
	if err != nil {
		return nil, NewSubmissionError(TypeLSF, job, "", err)
	}
	defer f.Close()

	var args []string
	if job.DependsOn != "" {
		args = append(args, l.DependencyArg(job.DependsOn)...)
	}

	cmd := exec.CommandContext(ctx, l.bsubBin, args...)
	cmd.Dir = job.Dir
	cmd.Stdin = f
	return submitBatch(ctx, l.runner, TypeLSF, job, cmd, l.rule)
}
