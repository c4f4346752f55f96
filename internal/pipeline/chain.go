package pipeline

import (
	"context"

	"github.com/Jordan-Sun/geos-chem/internal/provision"
	"github.com/Jordan-Sun/geos-chem/internal/scheduler"
)

// ChainResult holds the records of a chained submission. Execute is nil
// when the backend leaves the execute stage to the operator.
type ChainResult struct {
	Compile *scheduler.SubmissionRecord
	Execute *scheduler.SubmissionRecord
}

// Chain submits the compile stage of pair and, when the backend runs it,
// the execute stage held on the compile job. A failed compile submission
// stops the chain. Batch submissions run from dir.
func Chain(ctx context.Context, backend scheduler.Backend, pair provision.ScriptPair, dir string) (*ChainResult, error) {
	return chain(ctx, backend, pair, dir, nil)
}

func chain(ctx context.Context, backend scheduler.Backend, pair provision.ScriptPair, dir string,
	afterCompile func(*scheduler.SubmissionRecord) error) (*ChainResult, error) {

	res := &ChainResult{}

	compile, err := backend.Submit(ctx, scheduler.Job{
		Script: pair.Compile,
		Stage:  scheduler.StageCompile,
		Dir:    dir,
	})
	if err != nil {
		return res, err
	}
	res.Compile = compile

	if afterCompile != nil {
		if err := afterCompile(compile); err != nil {
			return res, err
		}
	}

	if !backend.RunsExecuteStage() {
		return res, nil
	}

	execute, err := backend.Submit(ctx, scheduler.Job{
		Script:    pair.Execute,
		Stage:     scheduler.StageExecute,
		Dir:       dir,
		DependsOn: compile.JobID,
	})
	if err != nil {
		return res, err
	}
	res.Execute = execute
	return res, nil
}
