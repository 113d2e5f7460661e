package mocks

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/felixgeelhaar/provisioner/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRunner_AddResult(t *testing.T) {
	t.Parallel()

	runner := NewCommandRunner()
	runner.AddResult("nmake", []string{"/f", "win32/Makefile.msc"}, ports.CommandResult{Stdout: "zlib1.dll"})

	result, err := runner.Run(context.Background(), "nmake", "/f", "win32/Makefile.msc")
	require.NoError(t, err)
	assert.Equal(t, "zlib1.dll", result.Stdout)
}

func TestCommandRunner_Unregistered(t *testing.T) {
	t.Parallel()

	runner := NewCommandRunner()
	_, err := runner.Run(context.Background(), "tar", "xf", "zlib.tar.gz")
	require.Error(t, err)

	runner.SucceedByDefault()
	result, err := runner.Run(context.Background(), "tar", "xf", "zlib.tar.gz")
	require.NoError(t, err)
	assert.True(t, result.Success())
}

func TestCommandRunner_PrecedenceAndHandlers(t *testing.T) {
	t.Parallel()

	boom := errors.New("exec: \"unzip\": executable file not found in $PATH")
	runner := NewCommandRunner()
	runner.AddError("unzip", []string{"a.zip"}, boom)
	runner.Handle("unzip", func(args []string) (ports.CommandResult, error) {
		return ports.CommandResult{ExitCode: 9, Stderr: "cannot find " + args[0]}, nil
	})

	_, err := runner.Run(context.Background(), "unzip", "a.zip")
	assert.ErrorIs(t, err, boom)

	result, err := runner.Run(context.Background(), "unzip", "b.zip")
	require.NoError(t, err)
	assert.Equal(t, 9, result.ExitCode)
	assert.Equal(t, "cannot find b.zip", result.Stderr)
}

func TestCommandRunner_RecordsCallsWithDir(t *testing.T) {
	t.Parallel()

	runner := NewCommandRunner()
	runner.SucceedByDefault()

	_, _ = runner.Run(context.Background(), "nmake", "/f", "Makefile.vc", "mode=dll")
	_, _ = runner.Run(context.Background(), "python", "setup.py", "bdist")

	wd, err := os.Getwd()
	require.NoError(t, err)

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "nmake", calls[0].Command)
	assert.Equal(t, wd, calls[0].Dir)
	assert.Equal(t, []string{"nmake /f Makefile.vc mode=dll", "python setup.py bdist"}, runner.CommandLines())

	runner.Reset()
	assert.Empty(t, runner.Calls())
	_, err = runner.Run(context.Background(), "nmake")
	assert.Error(t, err, "Reset clears SucceedByDefault")
}

func TestCommandRunner_ThreadSafety(t *testing.T) {
	t.Parallel()

	runner := NewCommandRunner()
	runner.SucceedByDefault()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = runner.Run(context.Background(), "cmd", "arg")
		}()
	}
	wg.Wait()

	assert.Len(t, runner.Calls(), 50)
}
