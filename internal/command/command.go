// Package command runs external processes behind an interface so the
// orchestrator can be exercised without a cluster.
package command

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// Commander defines how the orchestrator runs external tools.
type Commander interface {
	// Output runs cmd and returns its standard output. On failure the
	// returned error carries the process's standard error text.
	Output(cmd *exec.Cmd) ([]byte, error)

	// Run runs cmd with whatever streams the caller attached and waits for it.
	Run(cmd *exec.Cmd) error
}

// ExecCommander runs commands for real.
type ExecCommander struct{}

func (ExecCommander) Output(cmd *exec.Cmd) ([]byte, error) {
	utils.PrintDebug("Executing: %s", utils.StyleCommand(Describe(cmd)))
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return out, err
	}
	return out, nil
}

func (ExecCommander) Run(cmd *exec.Cmd) error {
	utils.PrintDebug("Executing: %s", utils.StyleCommand(Describe(cmd)))
	return cmd.Run()
}

// Describe renders cmd for logs, including a stdin redirect when stdin is a named file.
func Describe(cmd *exec.Cmd) string {
	line := strings.Join(cmd.Args, " ")
	if f, ok := cmd.Stdin.(interface{ Name() string }); ok {
		line += " < " + f.Name()
	}
	if cmd.Dir != "" {
		line = "(cd " + cmd.Dir + " && " + line + ")"
	}
	return line
}

// ExitCode extracts the process exit status from err, or -1 when err is not
// an exit error.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// FakeCommander is used to fake results in tests.
// Every command passed to it is recorded in order.
type FakeCommander struct {
	// FakeFn, when set, decides the output of each command.
	FakeFn func(*exec.Cmd) ([]byte, error)
	// CmdOutput and Err are returned when FakeFn is nil.
	CmdOutput string
	Err       error

	mu    sync.Mutex
	calls []*exec.Cmd
}

func (f *FakeCommander) Output(cmd *exec.Cmd) ([]byte, error) {
	f.record(cmd)
	if f.FakeFn != nil {
		return f.FakeFn(cmd)
	}
	return []byte(f.CmdOutput), f.Err
}

func (f *FakeCommander) Run(cmd *exec.Cmd) error {
	f.record(cmd)
	if f.FakeFn != nil {
		_, err := f.FakeFn(cmd)
		return err
	}
	return f.Err
}

// Calls returns the recorded commands.
func (f *FakeCommander) Calls() []*exec.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*exec.Cmd, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeCommander) record(cmd *exec.Cmd) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
}
