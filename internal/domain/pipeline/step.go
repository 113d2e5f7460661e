package pipeline

// Work performs a step. Returning an error aborts the pipeline.
type Work func(ctx RunContext) error

// Step is a named unit of provisioning work.
type Step struct {
	id          StepID
	description string
	always      bool
	work        Work
}

// StepOption configures a Step.
type StepOption func(*Step)

// WithDescription sets a human-readable description.
func WithDescription(desc string) StepOption {
	return func(s *Step) {
		s.description = desc
	}
}

// Always makes the step bypass the ledger: it runs on every invocation and
// is never recorded as complete.
func Always() StepOption {
	return func(s *Step) {
		s.always = true
	}
}

// NewStep creates a step.
func NewStep(id StepID, work Work, opts ...StepOption) Step {
	s := Step{id: id, work: work}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ID returns the step identifier.
func (s Step) ID() StepID {
	return s.id
}

// Description returns the description, or the ID when none was set.
func (s Step) Description() string {
	if s.description == "" {
		return s.id.String()
	}
	return s.description
}

// IsAlways reports whether the step bypasses the ledger.
func (s Step) IsAlways() bool {
	return s.always
}
