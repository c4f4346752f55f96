package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Jordan-Sun/geos-chem/internal/config"
	"github.com/Jordan-Sun/geos-chem/internal/pipeline"
	"github.com/Jordan-Sun/geos-chem/internal/scheduler"
	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// runPipeline is swapped out in tests.
var runPipeline = pipeline.Run

type rootFlags struct {
	directory  string
	envFile    string
	partition  string
	scheduler  string
	configFile string
	quick      bool
	help       bool
	debug      bool
}

func newRootCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orchestrate",
		Short: "Create, specialize and submit GEOS-Chem integration tests.",
		Long: `Creates integration test run directories in the root directory, adapts the
compile and execute scripts to the chosen batch scheduler and submits them so
that execution starts only after compilation succeeds. Without --scheduler the
compile step runs in the foreground and execution is left to the operator.`,
		Example: `  orchestrate -d /scratch/itest -e gcclassic.env -s SLURM -p seas
  orchestrate -d /scratch/itest -e gcclassic.env -s LSF -p rvch --quick
  orchestrate -d ./itest -e gcclassic.env`,
		Version:       config.VERSION,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &UsageError{Err: fmt.Errorf("unexpected argument %q", args[0])}
			}
			return nil
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if f.debug {
				utils.DebugMode = true
				utils.PrintDebug("Debug mode enabled")
				utils.PrintDebug("Version: %s", utils.StyleInfo(config.VERSION))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}

			settings, err := config.Load(f.configFile)
			if err != nil {
				return err
			}
			utils.PrintDebug("Scheduler: %s, partition: %s", opts.Scheduler, opts.Partition)

			_, err = runPipeline(cmd.Context(), opts, pipeline.Deps{Settings: settings})
			return err
		},
	}

	cmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	flags := cmd.Flags()
	flags.StringVarP(&f.directory, "directory", "d", "", "Root directory where integration tests will be created")
	flags.StringVarP(&f.envFile, "env-file", "e", "", "Environment file (loads compilers and libraries)")
	flags.StringVarP(&f.partition, "partition", "p", "", "Partition (SLURM) or queue (LSF) for the test jobs")
	flags.StringVarP(&f.scheduler, "scheduler", "s", "", "Batch scheduler: SLURM or LSF (default: run interactively)")
	flags.BoolVarP(&f.quick, "quick", "q", false, "Only create a small subset of run directories")
	flags.BoolVarP(&f.help, "help", "h", false, "Print this help and exit")
	flags.BoolVar(&f.debug, "debug", false, "Enable debug mode with verbose output")
	flags.StringVar(&f.configFile, "config", "", "Configuration file (default: search orchestrate.yaml)")
	return cmd
}

// options turns the parsed flags into a pipeline request.
func (f *rootFlags) options() (pipeline.Options, error) {
	st, err := scheduler.ParseType(f.scheduler)
	if err != nil {
		return pipeline.Options{}, &UsageError{Err: err}
	}
	opts := pipeline.Options{
		RootDir:   f.directory,
		EnvFile:   f.envFile,
		Scheduler: st,
		Partition: f.partition,
		Quick:     f.quick,
	}
	if err := opts.Validate(); err != nil {
		return opts, &UsageError{Err: err}
	}
	return opts, nil
}

// Run executes the command line args and returns the process exit status.
// Every failure exits 1, and so does --help.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	restore := utils.SetOutput(stdout, stderr)
	defer restore()
	defer func(prev bool) { utils.DebugMode = prev }(utils.DebugMode)

	f := &rootFlags{}
	cmd := newRootCmd(f)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil && f.help:
		return 1
	case err == nil:
		return 0
	case IsUsageError(err):
		utils.PrintError("%v", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return 1
	default:
		utils.PrintError("%v", err)
		return 1
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
