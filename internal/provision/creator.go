package provision

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/google/shlex"

	"github.com/Jordan-Sun/geos-chem/internal/command"
	"github.com/Jordan-Sun/geos-chem/internal/utils"
)

// Creator populates a root directory with run directories and scripts.
type Creator interface {
	Create(ctx context.Context, req Request) error
}

// CommandCreator runs an external creation tool as
// "<command...> <root> <envFile> <yes|no>", the last argument being the
// quick flag.
type CommandCreator struct {
	Command string
	Runner  command.Commander
}

// NewCommandCreator returns a creator for the given command line.
func NewCommandCreator(commandLine string, runner command.Commander) *CommandCreator {
	if runner == nil {
		runner = command.ExecCommander{}
	}
	return &CommandCreator{Command: commandLine, Runner: runner}
}

// Args returns the full argument vector for req.
func (c *CommandCreator) Args(req Request) ([]string, error) {
	argv, err := shlex.Split(c.Command)
	if err != nil {
		return nil, fmt.Errorf("invalid create command %q: %w", c.Command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("create command is empty")
	}
	quick := "no"
	if req.Quick {
		quick = "yes"
	}
	return append(argv, req.Root, req.EnvFile, quick), nil
}

func (c *CommandCreator) Create(ctx context.Context, req Request) error {
	argv, err := c.Args(req)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = utils.Stdout()
	cmd.Stderr = utils.Stderr()
	if err := c.Runner.Run(cmd); err != nil {
		if code := command.ExitCode(err); code >= 0 {
			return fmt.Errorf("%s exited with status %d: %w", argv[0], code, err)
		}
		return fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	return nil
}
