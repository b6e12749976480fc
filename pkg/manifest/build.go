package manifest

import (
	"fmt"

	"github.com/systemstart/stepline/pkg/pipeline"
)

// Funcs maps callable names to the Go functions a manifest may bind.
type Funcs map[string]any

// Build turns a validated manifest into an executable pipeline, binding each
// step's call name against funcs. Binding contract violations (wrong arity,
// bad subsets) surface here, before anything runs.
func Build(m *Manifest, funcs Funcs) (*pipeline.Pipeline, error) {
	steps := make([]*pipeline.Step, 0, len(m.Steps))

	for _, cfg := range m.Steps {
		fn, ok := funcs[cfg.Call]
		if !ok {
			return nil, fmt.Errorf("step %q: unknown callable %q", cfg.Name, cfg.Call)
		}

		s, err := pipeline.NewStep(cfg.Name, cfg.Args, fn,
			pipeline.WithReturns(cfg.Returns...),
			pipeline.WithOutputs(cfg.Outputs...),
			pipeline.WithPublicReturns(cfg.Public...))
		if err != nil {
			return nil, fmt.Errorf("building step %q: %w", cfg.Name, err)
		}
		steps = append(steps, s)
	}

	return pipeline.New(steps...)
}
