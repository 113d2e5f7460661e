package provision

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ToolError reports an external tool that ran and exited non-zero.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.ExitCode)
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

// Command returns the full command line that failed.
func (e *ToolError) Command() string {
	if len(e.Args) == 0 {
		return e.Tool
	}
	return e.Tool + " " + strings.Join(e.Args, " ")
}

// ToolNotFoundError reports a tool whose executable could not be started.
type ToolNotFoundError struct {
	Tool string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found: %v (map it under tools: or add its directory to path:)", e.Tool, e.Err)
}

func (e *ToolNotFoundError) Unwrap() error {
	return e.Err
}

// isCommandNotFound reports whether an error indicates a missing executable.
func isCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
