// Package pipeline runs an ordered list of named provisioning steps exactly
// once each across process restarts.
//
// Each step is checked against a completion ledger before it runs. Steps
// with a completion record are skipped; the rest run in declaration order
// and are recorded only after their work returns without error. The first
// failure stops the run. Nothing is rolled back, so a rerun picks up at the
// first step without a record.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/provisioner/internal/ports"
	"github.com/google/uuid"
)

// Pipeline owns an ordered sequence of steps.
type Pipeline struct {
	steps  []Step
	index  map[string]int
	ledger ports.Ledger
	logger ports.Logger
	dryRun bool
	runID  func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Without it the pipeline logs nothing.
func WithLogger(logger ports.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithDryRun makes Run report what would execute without executing it.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) {
		p.dryRun = dryRun
	}
}

// WithRunID overrides run ID generation.
func WithRunID(gen func() string) Option {
	return func(p *Pipeline) {
		p.runID = gen
	}
}

// New creates an empty pipeline backed by ledger.
func New(ledger ports.Ledger, opts ...Option) *Pipeline {
	p := &Pipeline{
		index:  make(map[string]int),
		ledger: ledger,
		logger: ports.Discard(),
		runID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add appends a step. Step IDs must be unique.
func (p *Pipeline) Add(step Step) error {
	if step.ID().IsZero() {
		return ErrEmptyStepID
	}
	if step.work == nil {
		return fmt.Errorf("step %q has no work", step.ID())
	}
	key := step.ID().String()
	if _, dup := p.index[key]; dup {
		return newDuplicateError(step.ID())
	}
	p.index[key] = len(p.steps)
	p.steps = append(p.steps, step)
	return nil
}

// Steps returns the steps in execution order.
func (p *Pipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Status reports, without running anything, which steps are complete and
// which would run. Steps that bypass the ledger are always pending.
func (p *Pipeline) Status() ([]StepResult, error) {
	results := make([]StepResult, 0, len(p.steps))
	for _, step := range p.steps {
		status, err := p.recordedStatus(step)
		if err != nil {
			return results, err
		}
		results = append(results, NewStepResult(step.ID(), status, nil))
	}
	return results, nil
}

// Run executes the pipeline. It returns the report in every case and a
// non-nil error when a step failed, the ledger could not be read or written,
// or ctx was cancelled between steps.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID:   p.runID(),
		DryRun:  p.dryRun,
		Results: make([]StepResult, 0, len(p.steps)),
	}

	lc, err := newLifecycle()
	if err != nil {
		return report, fmt.Errorf("build run lifecycle: %w", err)
	}
	lc.send(EventStart)

	logger := p.logger.With(ports.F(ports.FieldRunID, report.RunID))
	logger.Info(ctx, "run started", ports.F("steps", len(p.steps)), ports.F("dry_run", p.dryRun))

	fail := func(i int, result StepResult, err error) (Report, error) {
		report.Results = append(report.Results, result)
		for _, rest := range p.steps[i+1:] {
			report.Results = append(report.Results, NewStepResult(rest.ID(), StatusNotRun, nil))
		}
		lc.send(EventFail)
		report.State = lc.state()
		logger.Error(ctx, "run failed", ports.F(ports.FieldStep, result.StepID().String()), ports.F(ports.FieldError, err))
		return report, err
	}

	for i, step := range p.steps {
		stepLogger := logger.With(ports.F(ports.FieldStep, step.ID().String()))

		if err := ctx.Err(); err != nil {
			cancelled := &StepError{Code: ErrCodeCancelled, Message: "run cancelled", StepID: step.ID().String(), Underlying: err}
			return fail(i, NewStepResult(step.ID(), StatusNotRun, cancelled), cancelled)
		}

		status, err := p.recordedStatus(step)
		if err != nil {
			return fail(i, NewStepResult(step.ID(), StatusFailed, err), err)
		}

		if status == StatusComplete {
			stepLogger.Debug(ctx, "already complete, skipping")
			report.Results = append(report.Results, NewStepResult(step.ID(), StatusComplete, nil))
			continue
		}

		if p.dryRun {
			report.Results = append(report.Results, NewStepResult(step.ID(), StatusPending, nil))
			continue
		}

		stepLogger.Info(ctx, "running", ports.F("description", step.Description()))
		start := time.Now()
		workErr := step.work(NewRunContext(ctx, report.RunID, step.ID(), stepLogger))
		duration := time.Since(start)

		if workErr != nil {
			stepErr := newStepFailedError(step.ID(), workErr)
			return fail(i, NewStepResult(step.ID(), StatusFailed, workErr).WithDuration(duration), stepErr)
		}

		if !step.IsAlways() {
			if err := p.ledger.MarkComplete(step.ID().String()); err != nil {
				ledgerErr := newLedgerError(step.ID(), err)
				return fail(i, NewStepResult(step.ID(), StatusFailed, ledgerErr).WithDuration(duration), ledgerErr)
			}
		}

		stepLogger.Info(ctx, "done", ports.F("duration", duration.Round(time.Millisecond).String()))
		report.Results = append(report.Results, NewStepResult(step.ID(), StatusSucceeded, nil).WithDuration(duration))
	}

	lc.send(EventSucceed)
	report.State = lc.state()
	logger.Info(ctx, "run finished")
	return report, nil
}

func (p *Pipeline) recordedStatus(step Step) (StepStatus, error) {
	if step.IsAlways() {
		return StatusPending, nil
	}
	done, err := p.ledger.IsComplete(step.ID().String())
	if err != nil {
		return StatusFailed, newLedgerError(step.ID(), err)
	}
	if done {
		return StatusComplete, nil
	}
	return StatusPending, nil
}
