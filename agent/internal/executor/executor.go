package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
)

// Result carries the combined output and exit code of one invocation.
type Result struct {
	Output   string
	ExitCode int
}

// Executor runs an external command vector. A non-zero exit is not an error
// at this level: Result carries the code and the error return is reserved for
// invocation failures (binary missing, timeout, kill).
type Executor interface {
	Run(ctx context.Context, command []string, dir string, env []string) (Result, error)
}

// ProcessExecutor runs commands as child processes with combined
// stdout/stderr capture.
type ProcessExecutor struct{}

func (ProcessExecutor) Run(ctx context.Context, command []string, dir string, env []string) (Result, error) {
	if len(command) == 0 {
		return Result{ExitCode: -1}, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{Output: string(out), ExitCode: exitErr.ExitCode()}, nil
		}
		return Result{Output: string(out), ExitCode: -1}, err
	}
	return Result{Output: string(out), ExitCode: 0}, nil
}

// MergedEnv returns the process environment with KEY=VALUE overrides
// appended, so the overrides win on duplicate keys.
func MergedEnv(overrides []string) []string {
	return append(os.Environ(), overrides...)
}
