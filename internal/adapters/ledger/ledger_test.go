package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLedger_MarkAndCheck(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "state")
	l := NewFileLedger(dir)

	done, err := l.IsComplete("fetch_libidn")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, l.MarkComplete("fetch_libidn"))

	done, err = l.IsComplete("fetch_libidn")
	require.NoError(t, err)
	assert.True(t, done)

	info, err := os.Stat(filepath.Join(dir, "fetch_libidn"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestFileLedger_MarkComplete_LeavesExistingMarker(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := NewFileLedger(dir)
	marker := filepath.Join(dir, "build_zlib")

	require.NoError(t, l.MarkComplete("build_zlib"))
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(marker, past, past))

	require.NoError(t, l.MarkComplete("build_zlib"))

	info, err := os.Stat(marker)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "marker must not be rewritten")
}

func TestFileLedger_ClearAndList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	l := NewFileLedger(dir)
	require.NoError(t, l.MarkComplete("build_zlib"))
	require.NoError(t, l.MarkComplete("fetch_libidn"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp.junk"), nil, 0o644))

	ids, err := l.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"build_zlib", "fetch_libidn"}, ids)

	require.NoError(t, l.Clear("build_zlib"))
	require.NoError(t, l.Clear("never_ran"))

	ids, err = l.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"fetch_libidn"}, ids)
}

func TestFileLedger_List_MissingDir(t *testing.T) {
	t.Parallel()

	l := NewFileLedger(filepath.Join(t.TempDir(), "absent"))
	ids, err := l.List()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFileLedger_InvalidIDs(t *testing.T) {
	t.Parallel()

	l := NewFileLedger(t.TempDir())
	for _, id := range []string{"", ".", "..", "a/b", `a\b`, ".hidden", "c:evil"} {
		t.Run(id, func(t *testing.T) {
			_, err := l.IsComplete(id)
			assert.ErrorIs(t, err, ErrInvalidStepID)
			assert.ErrorIs(t, l.MarkComplete(id), ErrInvalidStepID)
		})
	}
}

func TestMemoryLedger(t *testing.T) {
	t.Parallel()

	l := NewMemoryLedger("fetch_libidn")

	done, err := l.IsComplete("fetch_libidn")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = l.IsComplete("build_zlib")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, l.MarkComplete("build_zlib"))
	assert.Equal(t, 1, l.MarkCount("build_zlib"))
	assert.Equal(t, 0, l.MarkCount("fetch_libidn"))

	ids, err := l.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"build_zlib", "fetch_libidn"}, ids)

	require.NoError(t, l.Clear("fetch_libidn"))
	done, err = l.IsComplete("fetch_libidn")
	require.NoError(t, err)
	assert.False(t, done)
}
