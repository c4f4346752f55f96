package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "orchestrate"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// EnvPrefix is the prefix for configuration environment variables,
// e.g. ORCHESTRATE_SLURM_SUBMIT_BIN.
const EnvPrefix = "ORCHESTRATE"

// Load reads the orchestrator settings.
// Priority (highest to lowest):
// 1. Environment variables (ORCHESTRATE_*)
// 2. cfgFile when given, otherwise the first orchestrate.yaml found in
//    ~/.config/orchestrate, ~/.orchestrate or the current directory
// 3. Defaults
//
// An explicit cfgFile that cannot be read is an error; a missing searched
// file is not.
func Load(cfgFile string) (*Settings, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(ConfigFilename)
		v.SetConfigType(ConfigType)
		if userConfigDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(userConfigDir, "orchestrate"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".orchestrate"))
		}
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// setDefaults sets default values for all config keys
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("create_command", d.CreateCommand)
	v.SetDefault("scripts_dir", d.ScriptsDir)
	v.SetDefault("compile_script", d.CompileScript)
	v.SetDefault("execute_script", d.ExecuteScript)
	v.SetDefault("placeholder", d.Placeholder)
	v.SetDefault("lock_file", d.LockFile)

	v.SetDefault("slurm.submit_bin", d.Slurm.SubmitBin)
	v.SetDefault("slurm.job_id_field", d.Slurm.JobIDField)
	v.SetDefault("lsf.submit_bin", d.Lsf.SubmitBin)
	v.SetDefault("lsf.job_id_field", d.Lsf.JobIDField)
}
