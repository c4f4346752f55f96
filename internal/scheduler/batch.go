package scheduler

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Jordan-Sun/geos-chem/internal/command"
	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// submitBatch runs a prepared submission command and extracts the job ID
// from its standard output.
func submitBatch(ctx context.Context, runner command.Commander, t Type, job Job, cmd *exec.Cmd, rule FieldRule) (*SubmissionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewSubmissionError(t, job, "", err)
	}

	output, err := runner.Output(cmd)
	if err != nil {
		return nil, NewSubmissionError(t, job, strings.TrimSpace(string(output)), err)
	}

	jobID, err := rule.Extract(string(output))
	if err != nil {
		return nil, NewSubmissionError(t, job, strings.TrimSpace(string(output)), err)
	}

	utils.PrintDebug("%s %s job ID: %s", t, job.Stage, utils.StyleNumber(jobID))
	return &SubmissionRecord{JobID: jobID, Stage: job.Stage, DependsOn: job.DependsOn}, nil
}

func requireScript(t Type, job Job) error {
	if job.Script == "" {
		return NewSubmissionError(t, job, "", fmt.Errorf("no script path given"))
	}
	if !utils.FileExists(job.Script) {
		return NewSubmissionError(t, job, "", fmt.Errorf("script not found"))
	}
	return nil
}
