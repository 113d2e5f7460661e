package pipeline

import "time"

// StepResult captures the outcome of one step in a run.
type StepResult struct {
	stepID   StepID
	status   StepStatus
	err      error
	duration time.Duration
}

// NewStepResult creates a new StepResult.
func NewStepResult(stepID StepID, status StepStatus, err error) StepResult {
	return StepResult{
		stepID: stepID,
		status: status,
		err:    err,
	}
}

// StepID returns the ID of the step.
func (r StepResult) StepID() StepID {
	return r.stepID
}

// Status returns the final status of the step.
func (r StepResult) Status() StepStatus {
	return r.status
}

// Error returns any error the work returned.
func (r StepResult) Error() error {
	return r.err
}

// Duration returns how long the work took. Zero when it did not run.
func (r StepResult) Duration() time.Duration {
	return r.duration
}

// WithDuration returns a new StepResult with duration set.
func (r StepResult) WithDuration(d time.Duration) StepResult {
	r.duration = d
	return r
}

// Report summarises a pipeline run.
type Report struct {
	RunID   string
	DryRun  bool
	State   RunState
	Results []StepResult
}

// Summary counts results by status.
func (r Report) Summary() map[StepStatus]int {
	counts := make(map[StepStatus]int)
	for i := range r.Results {
		counts[r.Results[i].Status()]++
	}
	return counts
}

// Failed returns the failed step result, if any.
func (r Report) Failed() (StepResult, bool) {
	for i := range r.Results {
		if r.Results[i].Status() == StatusFailed {
			return r.Results[i], true
		}
	}
	return StepResult{}, false
}
