package command

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecCommanderOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	out, err := ExecCommander{}.Output(exec.Command("sh", "-c", "echo Submitted batch job 42"))
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if strings.TrimSpace(string(out)) != "Submitted batch job 42" {
		t.Errorf("Output = %q", out)
	}

	_, err = ExecCommander{}.Output(exec.Command("sh", "-c", "echo queue closed >&2; exit 3"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "queue closed") {
		t.Errorf("error %q does not carry stderr", err)
	}
	if code := ExitCode(err); code != 3 {
		t.Errorf("ExitCode = %d, want 3", code)
	}
}

func TestExitCodeNonExitError(t *testing.T) {
	if code := ExitCode(errors.New("plain")); code != -1 {
		t.Errorf("ExitCode = %d, want -1", code)
	}
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "job.sh")
	if err := os.WriteFile(script, []byte("#!/bin/bash\n"), 0644); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	f, err := os.Open(script)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	cmd := exec.Command("bsub", "-w", "exit(1,0)")
	cmd.Stdin = f
	cmd.Dir = dir

	want := "(cd " + dir + " && bsub -w exit(1,0) < " + script + ")"
	if got := Describe(cmd); got != want {
		t.Errorf("Describe = %q, want %q", got, want)
	}
}

func TestFakeCommanderRecords(t *testing.T) {
	fake := &FakeCommander{CmdOutput: "ok"}
	if _, err := fake.Output(exec.Command("first")); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if err := fake.Run(exec.Command("second")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	calls := fake.Calls()
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0].Args[0] != "first" || calls[1].Args[0] != "second" {
		t.Errorf("calls out of order: %v, %v", calls[0].Args, calls[1].Args)
	}
}
