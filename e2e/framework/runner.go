//go:build e2e

package framework

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// Result represents the result of running a command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// Success returns true if the command exited with code 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// Contains checks if stdout contains the given substring.
func (r *Result) Contains(s string) bool {
	return strings.Contains(r.Stdout, s)
}

// StderrContains checks if stderr contains the given substring.
func (r *Result) StderrContains(s string) bool {
	return strings.Contains(r.Stderr, s)
}

// Runner executes provisioner commands in a test environment.
type Runner struct {
	t   *testing.T
	env *Environment
}

// NewRunner creates a new command runner.
func NewRunner(t *testing.T, env *Environment) *Runner {
	return &Runner{
		t:   t,
		env: env,
	}
}

// Exec runs the provisioner binary with the given arguments from the
// environment's root directory. The host PATH is kept so the build tools
// named in manifests resolve.
func (r *Runner) Exec(args ...string) *Result {
	r.t.Helper()

	cmd := exec.Command(r.env.BinaryPath(), args...)
	cmd.Dir = r.env.RootDir()
	cmd.Env = append(os.Environ(), "HOME="+r.env.HomeDir())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		result.Err = nil // Exit code is not an error
	} else if err != nil {
		result.ExitCode = -1
	}

	return result
}

// withConfig prefixes a subcommand with the manifest and tools flags.
func (r *Runner) withConfig(command string, args ...string) *Result {
	r.t.Helper()

	full := []string{command, "--config", ManifestFile}
	if r.env.HasTools() {
		full = append(full, "--tools", ToolsFile)
	}
	return r.Exec(append(full, args...)...)
}

// Version runs the version command.
func (r *Runner) Version() *Result {
	return r.Exec("version")
}

// Provision runs the run command.
func (r *Runner) Provision(args ...string) *Result {
	return r.withConfig("run", args...)
}

// DryRun runs the run command with --dry-run.
func (r *Runner) DryRun() *Result {
	return r.withConfig("run", "--dry-run")
}

// Status runs the status command.
func (r *Runner) Status() *Result {
	return r.withConfig("status")
}

// Reset runs the reset command for the given steps.
func (r *Runner) Reset(stepIDs ...string) *Result {
	return r.withConfig("reset", stepIDs...)
}

// Fetch runs the fetch command.
func (r *Runner) Fetch(url string, args ...string) *Result {
	return r.withConfig("fetch", append([]string{url}, args...)...)
}

// Cache runs the cache command.
func (r *Runner) Cache() *Result {
	return r.withConfig("cache")
}

// Scenario provides a fluent interface for writing BDD-style tests.
type Scenario struct {
	t      *testing.T
	env    *Environment
	runner *Runner
	result *Result
}

// NewScenario creates a new test scenario.
func NewScenario(t *testing.T) *Scenario {
	env := NewEnvironment(t)
	return &Scenario{
		t:      t,
		env:    env,
		runner: NewRunner(t, env),
	}
}

// Given sets up the test preconditions.
func (s *Scenario) Given(description string, setup func(*Environment)) *Scenario {
	s.t.Helper()
	s.t.Logf("Given %s", description)
	setup(s.env)
	return s
}

// When executes the action under test.
func (s *Scenario) When(description string, action func(*Runner) *Result) *Scenario {
	s.t.Helper()
	s.t.Logf("When %s", description)
	s.result = action(s.runner)
	return s
}

// Then asserts the expected outcome.
func (s *Scenario) Then(description string, assertion func(*testing.T, *Result)) *Scenario {
	s.t.Helper()
	s.t.Logf("Then %s", description)
	assertion(s.t, s.result)
	return s
}

// And is an alias for Then for chaining assertions.
func (s *Scenario) And(description string, assertion func(*testing.T, *Result)) *Scenario {
	return s.Then(description, assertion)
}

// Environment returns the test environment for direct access.
func (s *Scenario) Environment() *Environment {
	return s.env
}

// Result returns the last command result.
func (s *Scenario) Result() *Result {
	return s.result
}
