//go:build e2e

package framework

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertSuccess asserts that the command succeeded.
func AssertSuccess(t *testing.T, r *Result) {
	t.Helper()
	if !r.Success() {
		t.Errorf("Expected command to succeed, got exit code %d\nStdout: %s\nStderr: %s",
			r.ExitCode, r.Stdout, r.Stderr)
	}
}

// AssertFailed asserts that the command failed.
func AssertFailed(t *testing.T, r *Result) {
	t.Helper()
	if r.Success() {
		t.Errorf("Expected command to fail, but it succeeded\nStdout: %s", r.Stdout)
	}
}

// AssertExitCode asserts the expected exit code.
func AssertExitCode(t *testing.T, r *Result, expected int) {
	t.Helper()
	if r.ExitCode != expected {
		t.Errorf("Expected exit code %d, got %d\nStdout: %s\nStderr: %s",
			expected, r.ExitCode, r.Stdout, r.Stderr)
	}
}

// AssertStdoutContains asserts that stdout contains the expected substring.
func AssertStdoutContains(t *testing.T, r *Result, expected string) {
	t.Helper()
	if !strings.Contains(r.Stdout, expected) {
		t.Errorf("Expected stdout to contain %q, but got:\n%s", expected, r.Stdout)
	}
}

// AssertStdoutNotContains asserts that stdout does not contain the unexpected substring.
func AssertStdoutNotContains(t *testing.T, r *Result, unexpected string) {
	t.Helper()
	if strings.Contains(r.Stdout, unexpected) {
		t.Errorf("Expected stdout to NOT contain %q, but got:\n%s", unexpected, r.Stdout)
	}
}

// AssertStderrContains asserts that stderr contains the expected substring.
func AssertStderrContains(t *testing.T, r *Result, expected string) {
	t.Helper()
	if !strings.Contains(r.Stderr, expected) {
		t.Errorf("Expected stderr to contain %q, but got:\n%s", expected, r.Stderr)
	}
}

// AssertFileExists asserts that a file exists in the environment.
func AssertFileExists(t *testing.T, env *Environment, path string) {
	t.Helper()
	if !env.FileExists(path) {
		t.Errorf("Expected file %s to exist", path)
	}
}

// AssertFileNotExists asserts that a file does not exist in the environment.
func AssertFileNotExists(t *testing.T, env *Environment, path string) {
	t.Helper()
	if env.FileExists(path) {
		t.Errorf("Expected file %s to NOT exist", path)
	}
}

// AssertFileEquals asserts that a file has exactly the expected content.
func AssertFileEquals(t *testing.T, env *Environment, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(env.RootDir(), path))
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	if string(content) != expected {
		t.Errorf("Expected file %s to equal %q, but got:\n%s", path, expected, string(content))
	}
}

// AssertComplete asserts that the step has a completion marker.
func AssertComplete(t *testing.T, env *Environment, stepIDs ...string) {
	t.Helper()
	for _, id := range stepIDs {
		if !env.FileExists(MarkerPath(id)) {
			t.Errorf("Expected step %s to be marked complete", id)
		}
	}
}

// AssertNotComplete asserts that the step has no completion marker.
func AssertNotComplete(t *testing.T, env *Environment, stepIDs ...string) {
	t.Helper()
	for _, id := range stepIDs {
		if env.FileExists(MarkerPath(id)) {
			t.Errorf("Expected step %s to have no completion marker", id)
		}
	}
}

// AssertOutputMatches checks that stdout contains every pattern.
func AssertOutputMatches(t *testing.T, r *Result, patterns ...string) {
	t.Helper()
	for _, pattern := range patterns {
		if !strings.Contains(r.Stdout, pattern) {
			t.Errorf("Expected output to contain pattern %q\nGot:\n%s", pattern, r.Stdout)
		}
	}
}
