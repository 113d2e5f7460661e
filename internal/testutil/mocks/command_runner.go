// Package mocks provides test doubles for testing.
package mocks

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/felixgeelhaar/provisioner/internal/ports"
)

// Handler produces the outcome of a mocked command. It may touch the
// filesystem to stand in for the tool's side effects.
type Handler func(args []string) (ports.CommandResult, error)

// Call is a recorded invocation together with the working directory it
// was made from.
type Call struct {
	ports.CommandCall
	Dir string
}

// CommandRunner is a thread-safe test double for ports.CommandRunner.
type CommandRunner struct {
	mu       sync.RWMutex
	results  map[string]ports.CommandResult
	errors   map[string]error
	handlers map[string]Handler
	succeed  bool
	calls    []Call
}

// NewCommandRunner creates a new CommandRunner mock. Unregistered commands
// return an error unless SucceedByDefault is called.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		results:  make(map[string]ports.CommandResult),
		errors:   make(map[string]error),
		handlers: make(map[string]Handler),
	}
}

// AddResult registers an expected command and its result.
func (m *CommandRunner) AddResult(command string, args []string, result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddError registers an expected command that should return an error.
func (m *CommandRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// Handle registers a handler for every invocation of command that has no
// exact result or error registered.
func (m *CommandRunner) Handle(command string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[command] = h
}

// SucceedByDefault makes unregistered commands exit 0 with no output.
func (m *CommandRunner) SucceedByDefault() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.succeed = true
}

// Run executes a mock command.
func (m *CommandRunner) Run(_ context.Context, command string, args ...string) (ports.CommandResult, error) {
	dir, _ := os.Getwd()

	m.mu.Lock()
	m.calls = append(m.calls, Call{
		CommandCall: ports.CommandCall{Command: command, Args: args},
		Dir:         dir,
	})
	m.mu.Unlock()

	m.mu.RLock()
	key := buildKey(command, args)
	err, hasErr := m.errors[key]
	result, hasResult := m.results[key]
	handler := m.handlers[command]
	succeed := m.succeed
	m.mu.RUnlock()

	switch {
	case hasErr:
		return ports.CommandResult{}, err
	case hasResult:
		return result, nil
	case handler != nil:
		return handler(args)
	case succeed:
		return ports.CommandResult{}, nil
	}

	return ports.CommandResult{}, fmt.Errorf("no mock result for command: %s %v", command, args)
}

// Calls returns all recorded command invocations.
func (m *CommandRunner) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]Call, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CommandLines returns the recorded invocations as "command arg..." strings.
func (m *CommandRunner) CommandLines() []string {
	calls := m.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Reset clears all registered results, errors, handlers and recorded calls.
func (m *CommandRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[string]ports.CommandResult)
	m.errors = make(map[string]error)
	m.handlers = make(map[string]Handler)
	m.succeed = false
	m.calls = nil
}

func buildKey(command string, args []string) string {
	return command + ":" + strings.Join(args, ":")
}

var _ ports.CommandRunner = (*CommandRunner)(nil)
