// Package command provides command execution adapters.
package command

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/provisioner/internal/ports"
)

// RealRunner executes external tools in the process working directory
// with the process environment.
type RealRunner struct {
	stdout io.Writer
	stderr io.Writer
}

// NewRealRunner creates a new RealRunner that only captures output.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// WithEcho returns a RealRunner that also copies tool output to the given
// writers while capturing it, so build tools report progress live.
func (r *RealRunner) WithEcho(stdout, stderr io.Writer) *RealRunner {
	return &RealRunner{stdout: stdout, stderr: stderr}
}

// Run executes a command, waits for it to exit and returns the result.
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = tee(&stdout, r.stdout)
	cmd.Stderr = tee(&stderr, r.stderr)

	err := cmd.Run()

	result := ports.CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

func tee(capture *strings.Builder, echo io.Writer) io.Writer {
	if echo == nil {
		return capture
	}
	return io.MultiWriter(capture, echo)
}

// Ensure RealRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*RealRunner)(nil)
