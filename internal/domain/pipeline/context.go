package pipeline

import (
	"context"

	"github.com/felixgeelhaar/provisioner/internal/ports"
)

// RunContext is handed to each step's work function.
type RunContext struct {
	ctx    context.Context
	runID  string
	stepID StepID
	logger ports.Logger
}

// NewRunContext creates a RunContext for a single step.
func NewRunContext(ctx context.Context, runID string, stepID StepID, logger ports.Logger) RunContext {
	return RunContext{
		ctx:    ctx,
		runID:  runID,
		stepID: stepID,
		logger: logger,
	}
}

// Context returns the underlying context.Context, carrying the step logger.
func (r RunContext) Context() context.Context {
	return ports.ContextWithLogger(r.ctx, r.logger)
}

// RunID returns the identifier of the current run.
func (r RunContext) RunID() string {
	return r.runID
}

// StepID returns the step being executed.
func (r RunContext) StepID() StepID {
	return r.stepID
}

// Logger returns a logger tagged with the run and step.
func (r RunContext) Logger() ports.Logger {
	return r.logger
}
