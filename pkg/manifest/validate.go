package manifest

import (
	"fmt"
	"slices"
)

// Validate checks the manifest for errors: empty pipelines, duplicate step
// names, name-subset violations, colliding recorded outputs, and step
// arguments that no initial argument or earlier public return can satisfy.
func (m *Manifest) Validate() error {
	if len(m.Steps) == 0 {
		return fmt.Errorf("manifest has no steps")
	}

	names := make(map[string]int)
	outputProducers := make(map[string]string)
	available := make(map[string]bool, len(m.Arguments))
	for _, arg := range m.Arguments {
		available[arg] = true
	}

	for i, step := range m.Steps {
		if step.Name == "" {
			return fmt.Errorf("step %d: name is required", i)
		}
		if prev, exists := names[step.Name]; exists {
			return fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)",
				i, step.Name, prev)
		}
		names[step.Name] = i

		if step.Call == "" {
			return fmt.Errorf("step %q: call is required", step.Name)
		}

		if err := validateStepNames(step, outputProducers); err != nil {
			return fmt.Errorf("step %q: %w", step.Name, err)
		}

		for _, arg := range step.Args {
			if !available[arg] {
				return fmt.Errorf("step %q: arg %q is not an initial argument or an earlier public return",
					step.Name, arg)
			}
		}
		for _, pub := range step.Public {
			available[pub] = true
		}
		for _, out := range step.Outputs {
			outputProducers[out] = step.Name
		}
	}

	return nil
}

func validateStepNames(step StepConfig, outputProducers map[string]string) error {
	for _, out := range step.Outputs {
		if !slices.Contains(step.Returns, out) {
			return fmt.Errorf("output %q is not a declared return", out)
		}
		if prev, exists := outputProducers[out]; exists {
			return fmt.Errorf("output %q already recorded by step %q", out, prev)
		}
	}
	for _, pub := range step.Public {
		if !slices.Contains(step.Returns, pub) {
			return fmt.Errorf("public return %q is not a declared return", pub)
		}
	}
	return nil
}
