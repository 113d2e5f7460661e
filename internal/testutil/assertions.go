package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertMarker asserts that the completion marker for stepID exists in
// stateDir and is empty.
func AssertMarker(t testing.TB, stateDir, stepID string) {
	t.Helper()

	info, err := os.Stat(filepath.Join(stateDir, stepID))
	if os.IsNotExist(err) {
		assert.Fail(t, "completion marker missing", "expected marker for step %q in %s", stepID, stateDir)
		return
	}
	require.NoError(t, err)
	assert.False(t, info.IsDir(), "marker for %q is a directory", stepID)
	assert.Zero(t, info.Size(), "marker for %q is not empty", stepID)
}

// AssertNoMarker asserts that stepID has no completion marker in stateDir.
func AssertNoMarker(t testing.TB, stateDir, stepID string) {
	t.Helper()

	_, err := os.Stat(filepath.Join(stateDir, stepID))
	assert.True(t, os.IsNotExist(err), "expected no marker for step %q in %s", stepID, stateDir)
}

// MarkerModTime returns the modification time of a completion marker.
func MarkerModTime(t testing.TB, stateDir, stepID string) time.Time {
	t.Helper()

	info, err := os.Stat(filepath.Join(stateDir, stepID))
	require.NoError(t, err, "marker for step %q", stepID)
	return info.ModTime()
}

// AssertNoTempFiles asserts that no partial download is left in dir.
func AssertNoTempFiles(t testing.TB, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp."), "leftover temp file %s", e.Name())
	}
}

// AssertFileEquals asserts that a file contains exactly the expected content.
func AssertFileEquals(t testing.TB, path, expected string, msgAndArgs ...interface{}) {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read file: %s", path)

	// Normalize line endings
	actual := strings.ReplaceAll(string(content), "\r\n", "\n")
	expected = strings.ReplaceAll(expected, "\r\n", "\n")

	assert.Equal(t, expected, actual, msgAndArgs...)
}
