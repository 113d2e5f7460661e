// Package testutil provides test helpers and utilities for provisioner tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir returns a per-test directory with symlinks resolved, so paths
// compare equal to what os.Getwd reports after a chdir into it.
func TempDir(t testing.TB) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err, "failed to resolve temp directory")
	return dir
}

// WriteTempFile writes content to a file in the specified directory,
// creating parent directories as needed.
func WriteTempFile(t testing.TB, dir, filename, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err, "failed to write temp file: %s", filename)

	return path
}

// WriteTempDir creates a subdirectory in the temp directory.
func WriteTempDir(t testing.TB, dir, dirname string) string {
	t.Helper()

	path := filepath.Join(dir, dirname)
	err := os.MkdirAll(path, 0o755)
	require.NoError(t, err, "failed to create temp subdirectory: %s", dirname)

	return path
}

// Getwd returns the current working directory or fails the test.
func Getwd(t testing.TB) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return wd
}
