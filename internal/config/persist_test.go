package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// isolate points every config search path at an empty temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	testChdir(t, dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), *s); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "site.yaml")
	content := `create_command: "bash /opt/gc/intTestCreate.sh"
placeholder: "@PARTITION@"
slurm:
  job_id_field: 0
lsf:
  submit_bin: /usr/local/lsf/bin/bsub
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Defaults()
	want.CreateCommand = "bash /opt/gc/intTestCreate.sh"
	want.Placeholder = "@PARTITION@"
	want.Slurm.JobIDField = 0
	want.Lsf.SubmitBin = "/usr/local/lsf/bin/bsub"
	if diff := cmp.Diff(want, *s); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSearchesCurrentDirectory(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "orchestrate.yaml"), []byte("scripts_dir: jobs\n"), 0644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.ScriptsDir != "jobs" {
		t.Errorf("ScriptsDir = %q, want %q", s.ScriptsDir, "jobs")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("ORCHESTRATE_SLURM_SUBMIT_BIN", "/opt/slurm/bin/sbatch")
	t.Setenv("ORCHESTRATE_LSF_JOB_ID_FIELD", "2")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Slurm.SubmitBin != "/opt/slurm/bin/sbatch" {
		t.Errorf("Slurm.SubmitBin = %q", s.Slurm.SubmitBin)
	}
	if s.Lsf.JobIDField != 2 {
		t.Errorf("Lsf.JobIDField = %d, want 2", s.Lsf.JobIDField)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Settings) {}},
		{
			name:    "empty placeholder",
			mutate:  func(s *Settings) { s.Placeholder = "" },
			wantErr: "placeholder must not be empty",
		},
		{
			name:    "negative field",
			mutate:  func(s *Settings) { s.Slurm.JobIDField = -1 },
			wantErr: "slurm.job_id_field",
		},
		{
			name:    "same script names",
			mutate:  func(s *Settings) { s.ExecuteScript = s.CompileScript },
			wantErr: "must differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
