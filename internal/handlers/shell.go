// shell.go implements run_bash_command and run_docker_command.
//
// Design: commands run through "sh -c" to completion and the caller gets
// one text block, stdout when it has anything and stderr otherwise. The
// exit status alone does not decide failure: a command that exits non-zero
// but explains itself on either stream is reported as output. Failure means
// the shell could not run the command at all (start error, or not found
// or not executable with nothing on stdout) or it died without saying
// anything. Timeouts come from the
// caller's context.

package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jpl-au/hubtools/internal/tool"
)

// CommandArgs are the bound arguments of the shell tools.
type CommandArgs struct {
	Command string
}

// ExclusiveDocker is the operation category shared by docker invocations.
const ExclusiveDocker = "docker"

// waitDelay bounds how long Wait blocks on output pipes after the shell has
// been killed, in case a child process still holds them open.
const waitDelay = 2 * time.Second

// Exit statuses sh uses when it cannot run the command.
const (
	exitNotExecutable = 126
	exitNotFound      = 127
)

// Shell runs commands through sh. Prefix is prepended to every command.
type Shell struct {
	Prefix string
}

// ShellTools returns run_docker_command and run_bash_command.
func ShellTools() []tool.Definition {
	bind := func(a tool.Args) CommandArgs {
		return CommandArgs{Command: a.String("command", "")}
	}
	docker := tool.Descriptor{
		Name:        "run_docker_command",
		Description: "Run a Docker command",
		Fields: []tool.Field{
			{Name: "command", Type: tool.TypeString, Required: true, Description: "Docker command to run, without the leading \"docker\""},
		},
		Exclusive: ExclusiveDocker,
	}
	bash := tool.Descriptor{
		Name:        "run_bash_command",
		Description: "Run a bash command",
		Fields: []tool.Field{
			{Name: "command", Type: tool.TypeString, Required: true, Description: "Bash command to run"},
		},
	}
	return []tool.Definition{
		{Descriptor: docker, Handler: tool.Bind(bind, Shell{Prefix: "docker "}.Run)},
		{Descriptor: bash, Handler: tool.Bind(bind, Shell{}.Run)},
	}
}

// Run executes the command and returns its output.
func (s Shell) Run(ctx context.Context, a CommandArgs) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", s.Prefix+a.Command)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return "", fmt.Errorf("command interrupted: %w", ctx.Err())
	}

	out := stdout.String()
	if out == "" {
		out = stderr.String()
	}
	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return "", fmt.Errorf("failed to run command: %w", err)
	}
	switch code := exitErr.ExitCode(); {
	case (code == exitNotFound || code == exitNotExecutable) && stdout.Len() == 0:
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = exitErr.Error()
		}
		return "", fmt.Errorf("failed to run command: %s", msg)
	case out == "":
		return "", fmt.Errorf("command failed with %s", exitErr)
	}
	return out, nil
}
