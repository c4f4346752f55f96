package config

import (
	"errors"
	"fmt"
)

const VERSION = "0.1.0"

// SchedulerSettings configures one batch scheduler backend.
type SchedulerSettings struct {
	// SubmitBin is the submission tool (sbatch, bsub) resolved via PATH when not absolute.
	SubmitBin string `mapstructure:"submit_bin"`
	// JobIDField is the zero-based whitespace-separated token of the
	// submission output holding the job identifier.
	JobIDField int `mapstructure:"job_id_field"`
}

// Settings holds the orchestrator configuration.
type Settings struct {
	CreateCommand string `mapstructure:"create_command"`
	ScriptsDir    string `mapstructure:"scripts_dir"`
	CompileScript string `mapstructure:"compile_script"`
	ExecuteScript string `mapstructure:"execute_script"`
	Placeholder   string `mapstructure:"placeholder"`
	LockFile      string `mapstructure:"lock_file"`

	Slurm SchedulerSettings `mapstructure:"slurm"`
	Lsf   SchedulerSettings `mapstructure:"lsf"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		CreateCommand: "./intTestCreate.sh",
		ScriptsDir:    "scripts",
		CompileScript: "integrationTestCompile.sh",
		ExecuteScript: "integrationTestExecute.sh",
		Placeholder:   "REQUESTED_PARTITION",
		LockFile:      ".orchestrate.lock",
		Slurm: SchedulerSettings{
			SubmitBin:  "sbatch",
			JobIDField: 3, // "Submitted batch job 12345"
		},
		Lsf: SchedulerSettings{
			SubmitBin:  "bsub",
			JobIDField: 1, // "Job <6789> is submitted to queue <normal>."
		},
	}
}

// Validate checks that every setting is usable.
func (s *Settings) Validate() error {
	var errs []error
	required := map[string]string{
		"create_command":   s.CreateCommand,
		"scripts_dir":      s.ScriptsDir,
		"compile_script":   s.CompileScript,
		"execute_script":   s.ExecuteScript,
		"placeholder":      s.Placeholder,
		"lock_file":        s.LockFile,
		"slurm.submit_bin": s.Slurm.SubmitBin,
		"lsf.submit_bin":   s.Lsf.SubmitBin,
	}
	for _, key := range Keys() {
		if v, ok := required[key]; ok && v == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", key))
		}
	}
	if s.CompileScript == s.ExecuteScript && s.CompileScript != "" {
		errs = append(errs, fmt.Errorf("compile_script and execute_script must differ (both %q)", s.CompileScript))
	}
	if s.Slurm.JobIDField < 0 {
		errs = append(errs, fmt.Errorf("slurm.job_id_field must be >= 0, got %d", s.Slurm.JobIDField))
	}
	if s.Lsf.JobIDField < 0 {
		errs = append(errs, fmt.Errorf("lsf.job_id_field must be >= 0, got %d", s.Lsf.JobIDField))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Keys lists every configuration key in a stable order.
func Keys() []string {
	return []string{
		"create_command",
		"scripts_dir",
		"compile_script",
		"execute_script",
		"placeholder",
		"lock_file",
		"slurm.submit_bin",
		"slurm.job_id_field",
		"lsf.submit_bin",
		"lsf.job_id_field",
	}
}
