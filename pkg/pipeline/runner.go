package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// Pipeline is an ordered sequence of steps sharing one argument registry.
// Construction validates cross-step contracts; Run executes the steps
// strictly sequentially, once per Pipeline value per call.
type Pipeline struct {
	steps []*Step
}

// New builds a pipeline from steps declared in execution order. Step names
// must be unique (they key the feedback records), and no two steps may
// record the same output name.
func New(steps ...*Step) (*Pipeline, error) {
	names := make(map[string]int, len(steps))
	outputs := make(map[string]string)

	for i, s := range steps {
		if prev, exists := names[s.name]; exists {
			return nil, fmt.Errorf("step %d: duplicate step name %q (first defined at step %d)",
				i, s.name, prev)
		}
		names[s.name] = i

		for _, out := range s.outputs {
			if prev, exists := outputs[out]; exists {
				return nil, fmt.Errorf("step %q: output %q already recorded by step %q",
					s.name, out, prev)
			}
			outputs[out] = s.name
		}
	}

	return &Pipeline{steps: steps}, nil
}

// Run executes the steps in order against a registry seeded with initial.
// The returned Feedback always lists every declared step: reached steps at
// the stage they ended in, unreached steps at not_started.
//
// A domain error from a step aborts the run and is captured into the
// feedback; Run then returns a nil error. Any other error (a malformed
// pipeline, or an unexpected fault from a callable) aborts the run and is
// returned as-is, with the feedback still fully assembled.
func (p *Pipeline) Run(initial map[string]any) (*Feedback, error) {
	fb := newFeedback(p.steps)
	err := p.run(initial, fb)
	return fb, err
}

// RunAndEmit runs the pipeline and emits exactly one feedback document, to
// feedbackPath or to standard output when the path is empty. Emission is
// deferred so it happens on every exit path, including a panic unwinding out
// of a step callable.
func (p *Pipeline) RunAndEmit(initial map[string]any, feedbackPath string) error {
	fb := newFeedback(p.steps)
	defer func() {
		if err := fb.Emit(feedbackPath); err != nil {
			slog.Error("failed to emit feedback", "error", err)
		}
	}()
	return p.run(initial, fb)
}

func (p *Pipeline) run(initial map[string]any, fb *Feedback) error {
	reg := NewRegistry(initial)

	for i, step := range p.steps {
		if err := p.runStep(step, fb.Steps[i], reg); err != nil {
			var domainErr *Error
			if errors.As(err, &domainErr) {
				fb.setError(domainErr)
				return nil
			}
			return err
		}
	}

	return nil
}

// runStep brackets one invocation with the stage transitions: started before
// the call, succeeded only after a clean return and output distribution. On
// failure the stage stays at started, which the report reads as "failed at
// this step".
func (p *Pipeline) runStep(step *Step, rec *StepRecord, reg *Registry) error {
	log := slog.With("step", step.name)

	rec.Stage = StageStarted
	log.Info("step started")

	returns, err := step.invoke(reg)
	if err != nil {
		log.Error("step failed", "error", err)
		return err
	}

	for _, name := range step.outputs {
		rec.Outputs[name] = returns[name]
	}
	for _, name := range step.publicReturns {
		reg.Set(name, returns[name])
	}

	rec.Stage = StageSucceeded
	log.Info("step succeeded")
	return nil
}
