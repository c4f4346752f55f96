// Package pipeline runs one integration-test orchestration: provision the
// root directory, specialize its scripts for the chosen scheduler and submit
// the compile and execute stages.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Jordan-Sun/geos-chem/internal/command"
	"github.com/Jordan-Sun/geos-chem/internal/config"
	"github.com/Jordan-Sun/geos-chem/internal/envscope"
	"github.com/Jordan-Sun/geos-chem/internal/provision"
	"github.com/Jordan-Sun/geos-chem/internal/scheduler"
	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// Variables exported to the creation tool and the stage scripts.
const (
	EnvRunID        = "ITEST_RUN_ID"
	EnvRoot         = "ITEST_ROOT"
	EnvEnvFile      = "ITEST_ENV_FILE"
	EnvScheduler    = "ITEST_SCHEDULER"
	EnvPartition    = "ITEST_PARTITION"
	EnvQuick        = "ITEST_QUICK"
	EnvCompileJobID = "ITEST_COMPILE_JOB_ID"
)

// Deps are the collaborators of a run. Nil fields get the real implementations.
type Deps struct {
	Settings  *config.Settings
	Commander command.Commander
	Creator   provision.Creator
}

// Result describes a finished run.
type Result struct {
	RunID string
	Set   *provision.RunDirectorySet
	Chain *ChainResult
	// Specialized is the number of scripts rewritten.
	Specialized int
	// Released lists the environment variables restored at the end of the run.
	Released []string
}

// NewRunID returns an identifier like "itest-20240102-150405-1a2b3c4d".
func NewRunID() string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	return fmt.Sprintf("itest-%s-%s", timestamp, uuid.New().String()[:8])
}

// Run performs one orchestration. The environment variables it exports and
// the root-directory lock are released before it returns, whatever the outcome.
func Run(ctx context.Context, opts Options, deps Deps) (res *Result, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	settings := config.Defaults()
	if deps.Settings != nil {
		settings = *deps.Settings
	}
	runner := deps.Commander
	if runner == nil {
		runner = command.ExecCommander{}
	}
	creator := deps.Creator
	if creator == nil {
		creator = provision.NewCommandCreator(settings.CreateCommand, runner)
	}

	backend, err := scheduler.New(opts.Scheduler, settings, runner)
	if err != nil {
		return nil, err
	}

	req, err := provision.Resolve(provision.Request{Root: opts.RootDir, EnvFile: opts.EnvFile, Quick: opts.Quick})
	if err != nil {
		return nil, err
	}

	res = &Result{RunID: NewRunID()}
	scope := envscope.New()
	defer func() {
		res.Released = scope.Keys()
		if rerr := scope.Release(); rerr != nil {
			utils.PrintWarning("Cleanup incomplete: %v", rerr)
			if err == nil {
				err = rerr
			}
		}
	}()

	quick := "no"
	if req.Quick {
		quick = "yes"
	}
	exports := [][2]string{
		{EnvRunID, res.RunID},
		{EnvRoot, req.Root},
		{EnvEnvFile, req.EnvFile},
		{EnvScheduler, string(backend.Type())},
		{EnvPartition, opts.Partition},
		{EnvQuick, quick},
	}
	for _, kv := range exports {
		if err := scope.Set(kv[0], kv[1]); err != nil {
			return res, err
		}
	}
	utils.PrintDebug("Run %s", utils.StyleName(res.RunID))

	lock, err := provision.LockRoot(req.Root, settings.LockFile)
	if err != nil {
		return res, err
	}
	scope.OnRelease(lock.Release)

	provisioner := &provision.Provisioner{Layout: provision.LayoutFrom(settings), Creator: creator}
	res.Set, err = provisioner.Provision(ctx, req)
	if err != nil {
		return res, err
	}

	if backend.Type().IsBatch() {
		res.Specialized, err = SpecializeSet(res.Set, backend, opts.Partition)
		if err != nil {
			return res, err
		}
	}

	scriptsDir := filepath.Dir(res.Set.Entry.Compile)
	res.Chain, err = chain(ctx, backend, res.Set.Entry, scriptsDir, func(rec *scheduler.SubmissionRecord) error {
		report(backend.Type(), scheduler.StageCompile, rec)
		if rec.JobID == "" {
			return nil
		}
		return scope.Set(EnvCompileJobID, rec.JobID)
	})
	if err != nil {
		return res, err
	}
	if res.Chain.Execute != nil {
		report(backend.Type(), scheduler.StageExecute, res.Chain.Execute)
	} else {
		utils.PrintNote("Execution tests were not submitted. Run %s once compilation has finished.",
			utils.StylePath(res.Set.Entry.Execute))
	}
	return res, nil
}

func report(t scheduler.Type, stage scheduler.Stage, rec *scheduler.SubmissionRecord) {
	what := "Compilation"
	if stage == scheduler.StageExecute {
		what = "Execution"
	}
	if rec.JobID == "" {
		utils.PrintSuccess("%s tests finished", what)
		return
	}
	utils.PrintMessage("%s tests submitted as %s job %s", what, t, utils.StyleNumber(rec.JobID))
}
