// Package provision turns configured steps into pipeline steps whose work
// performs the configured actions.
package provision

import (
	"fmt"

	"github.com/felixgeelhaar/provisioner/internal/domain/config"
	"github.com/felixgeelhaar/provisioner/internal/domain/pipeline"
)

// Provider compiles configuration into executable steps.
type Provider struct {
	exec *Executor
}

// NewProvider creates a provider that runs actions through exec.
func NewProvider(exec *Executor) *Provider {
	return &Provider{exec: exec}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "provision"
}

// Compile returns one pipeline step per configured step, in order. When
// only is non-empty, just the named steps are compiled; unknown names are
// an error.
func (p *Provider) Compile(cfg *config.Config, only ...string) ([]pipeline.Step, error) {
	specs := cfg.Steps()

	if len(only) > 0 {
		wanted := make(map[string]bool, len(only))
		for _, id := range only {
			if _, ok := cfg.Step(id); !ok {
				return nil, fmt.Errorf("unknown step %q", id)
			}
			wanted[id] = true
		}
		filtered := specs[:0]
		for _, s := range specs {
			if wanted[s.ID] {
				filtered = append(filtered, s)
			}
		}
		specs = filtered
	}

	steps := make([]pipeline.Step, 0, len(specs))
	for _, spec := range specs {
		id, err := pipeline.NewStepID(spec.ID)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", spec.ID, err)
		}

		opts := []pipeline.StepOption{pipeline.WithDescription(spec.Description)}
		if spec.Always {
			opts = append(opts, pipeline.Always())
		}

		actions := spec.Actions
		steps = append(steps, pipeline.NewStep(id, func(rc pipeline.RunContext) error {
			return p.exec.Run(rc.Context(), actions)
		}, opts...))
	}
	return steps, nil
}
