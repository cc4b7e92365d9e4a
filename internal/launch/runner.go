package launch

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
)

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string            // working directory (optional)
	Env  map[string]string // overlay on the inherited environment
}

// Runner runs a command to completion.
type Runner interface {
	// Run returns the exit code when the process ran (even non-zero) and an
	// error only when it could not be started or waited for.
	Run(ctx context.Context, cmd Command) (int, error)
}

// ExecRunner runs commands with os/exec, attached to the operator's terminal.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the process stdio.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) (int, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	if len(c.Env) > 0 {
		keys := make([]string, 0, len(c.Env))
		for k := range c.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cmd.Env = cmd.Environ()
		for _, k := range keys {
			cmd.Env = append(cmd.Env, k+"="+c.Env[k])
		}
	}

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}
