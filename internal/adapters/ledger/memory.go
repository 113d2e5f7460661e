package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/provisioner/internal/ports"
)

// MemoryLedger keeps completion records in memory. It backs dry runs and tests.
type MemoryLedger struct {
	mu       sync.RWMutex
	complete map[string]bool
	marks    map[string]int
}

// NewMemoryLedger creates a ledger pre-populated with the given completed steps.
func NewMemoryLedger(completed ...string) *MemoryLedger {
	l := &MemoryLedger{
		complete: make(map[string]bool, len(completed)),
		marks:    make(map[string]int),
	}
	for _, id := range completed {
		l.complete[id] = true
	}
	return l
}

// IsComplete reports whether stepID has been recorded.
func (l *MemoryLedger) IsComplete(stepID string) (bool, error) {
	if !validMarkerName(stepID) {
		return false, fmt.Errorf("%w: %q", ErrInvalidStepID, stepID)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.complete[stepID], nil
}

// MarkComplete records stepID.
func (l *MemoryLedger) MarkComplete(stepID string) error {
	if !validMarkerName(stepID) {
		return fmt.Errorf("%w: %q", ErrInvalidStepID, stepID)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.marks[stepID]++
	l.complete[stepID] = true
	return nil
}

// Clear forgets stepID.
func (l *MemoryLedger) Clear(stepID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.complete, stepID)
	return nil
}

// List returns all recorded step IDs, sorted.
func (l *MemoryLedger) List() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.complete))
	for id := range l.complete {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MarkCount returns how many times MarkComplete was called for stepID.
func (l *MemoryLedger) MarkCount(stepID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.marks[stepID]
}

var _ ports.ResettableLedger = (*MemoryLedger)(nil)
