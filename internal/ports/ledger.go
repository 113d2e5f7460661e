package ports

// Ledger records which pipeline steps have run to completion.
// Step IDs are opaque, file-name safe strings.
type Ledger interface {
	// IsComplete reports whether a completion record exists for the step.
	IsComplete(stepID string) (bool, error)

	// MarkComplete records the step as complete. Recording an already
	// complete step leaves the existing record untouched.
	MarkComplete(stepID string) error
}

// ResettableLedger extends Ledger with manual cleanup.
// Pipelines never call these; they back the reset and status commands.
type ResettableLedger interface {
	Ledger

	// Clear removes the record for the step. Clearing an unknown step is a no-op.
	Clear(stepID string) error

	// List returns the IDs of all completed steps, sorted.
	List() ([]string, error)
}

// AsResettable returns the ledger as a ResettableLedger, or nil if it
// does not support manual cleanup.
func AsResettable(l Ledger) ResettableLedger {
	if r, ok := l.(ResettableLedger); ok {
		return r
	}
	return nil
}
