// Package ledger provides completion ledgers for the provisioning pipeline.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/provisioner/internal/ports"
)

// ErrInvalidStepID is returned for IDs that cannot be used as a marker file name.
var ErrInvalidStepID = errors.New("step ID is not a valid marker name")

// FileLedger stores one zero-byte marker file per completed step under dir
// (conventionally <root>/state). Other tooling may rely on this layout.
type FileLedger struct {
	dir string
}

// NewFileLedger creates a ledger rooted at dir. The directory is created
// lazily on the first MarkComplete.
func NewFileLedger(dir string) *FileLedger {
	return &FileLedger{dir: dir}
}

// Dir returns the marker directory.
func (l *FileLedger) Dir() string {
	return l.dir
}

// IsComplete reports whether the marker file for stepID exists.
func (l *FileLedger) IsComplete(stepID string) (bool, error) {
	path, err := l.markerPath(stepID)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("check marker %s: %w", stepID, err)
	}
}

// MarkComplete creates the marker file. An existing marker is left as is.
func (l *FileLedger) MarkComplete(stepID string) error {
	path, err := l.markerPath(stepID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("write marker %s: %w", stepID, err)
	}
	return f.Close()
}

// Clear deletes the marker file for stepID.
func (l *FileLedger) Clear(stepID string) error {
	path, err := l.markerPath(stepID)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove marker %s: %w", stepID, err)
	}
	return nil
}

// List returns the IDs of all marker files, sorted.
func (l *FileLedger) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *FileLedger) markerPath(stepID string) (string, error) {
	if !validMarkerName(stepID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStepID, stepID)
	}
	return filepath.Join(l.dir, stepID), nil
}

func validMarkerName(id string) bool {
	if id == "" || id == "." || id == ".." || strings.HasPrefix(id, ".") {
		return false
	}
	return !strings.ContainsAny(id, `/\:`)
}

var _ ports.ResettableLedger = (*FileLedger)(nil)
