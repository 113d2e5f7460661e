package pipeline

// StepStatus represents the state of a step in a run.
type StepStatus string

const (
	// StatusPending means no completion record exists; the step would run.
	StatusPending StepStatus = "pending"
	// StatusComplete means a completion record from an earlier run exists
	// and the work was skipped.
	StatusComplete StepStatus = "complete"
	// StatusSucceeded means the work ran in this run and returned no error.
	StatusSucceeded StepStatus = "succeeded"
	// StatusFailed means the work ran in this run and returned an error.
	StatusFailed StepStatus = "failed"
	// StatusNotRun means an earlier step failed so this one was never reached.
	StatusNotRun StepStatus = "not-run"
)

// String returns the string representation of the status.
func (s StepStatus) String() string {
	return string(s)
}

// IsDone reports whether the step's outcome is in place after the run.
func (s StepStatus) IsDone() bool {
	return s == StatusComplete || s == StatusSucceeded
}
