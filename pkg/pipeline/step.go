package pipeline

import (
	"fmt"
	"reflect"
	"slices"
)

// Step describes one pipeline unit: a named callable with declared input
// names, return-value names, and the subsets of those returns that are
// recorded for reporting (outputs) or promoted into the argument registry
// for later steps (public returns).
type Step struct {
	name          string
	inputs        []string
	fn            reflect.Value
	returns       []string
	outputs       []string
	publicReturns []string
}

// StepOption configures a Step at construction.
type StepOption func(*Step)

// WithReturns names the callable's non-error results, in order.
func WithReturns(names ...string) StepOption {
	return func(s *Step) { s.returns = names }
}

// WithOutputs marks a subset of the return names to be recorded in the
// step's feedback record.
func WithOutputs(names ...string) StepOption {
	return func(s *Step) { s.outputs = names }
}

// WithPublicReturns marks a subset of the return names to be written into
// the argument registry, overwriting any existing value of the same name.
func WithPublicReturns(names ...string) StepOption {
	return func(s *Step) { s.publicReturns = names }
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// NewStep builds a step descriptor and validates the binding contract once,
// up front: fn must be a non-variadic function taking one parameter per
// declared input, returning exactly one result per declared return name plus
// a trailing error. Output and public-return names must be subsets of the
// return names.
func NewStep(name string, inputs []string, fn any, opts ...StepOption) (*Step, error) {
	if name == "" {
		return nil, fmt.Errorf("step name is required")
	}

	s := &Step{name: name, inputs: inputs}
	for _, opt := range opts {
		opt(s)
	}

	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("step %q: callable must be a function, got %T", name, fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("step %q: variadic callables are not supported", name)
	}
	if t.NumIn() != len(s.inputs) {
		return nil, fmt.Errorf("step %q: %d inputs declared but callable takes %d parameters",
			name, len(s.inputs), t.NumIn())
	}
	if t.NumOut() == 0 || t.Out(t.NumOut()-1) != errType {
		return nil, fmt.Errorf("step %q: callable must return error as its last result", name)
	}
	if got := t.NumOut() - 1; got != len(s.returns) {
		return nil, fmt.Errorf("step %q: %d return names declared but callable has %d results",
			name, len(s.returns), got)
	}

	for _, list := range [][]string{s.inputs, s.returns, s.outputs, s.publicReturns} {
		if dup, ok := firstDuplicate(list); ok {
			return nil, fmt.Errorf("step %q: duplicate name %q", name, dup)
		}
	}
	if bad, ok := notSubset(s.outputs, s.returns); ok {
		return nil, fmt.Errorf("step %q: output %q is not a declared return name", name, bad)
	}
	if bad, ok := notSubset(s.publicReturns, s.returns); ok {
		return nil, fmt.Errorf("step %q: public return %q is not a declared return name", name, bad)
	}

	s.fn = v
	return s, nil
}

// Name returns the step's reporting key.
func (s *Step) Name() string { return s.name }

// invoke resolves the declared inputs from reg, dispatches the callable, and
// pairs its results against the declared return names. A missing input or a
// type mismatch is a malformed-pipeline fault, reported as a plain error so
// it stays outside the domain failure channel.
func (s *Step) invoke(reg *Registry) (map[string]any, error) {
	t := s.fn.Type()
	args := make([]reflect.Value, len(s.inputs))
	for i, name := range s.inputs {
		v, ok := reg.Get(name)
		if !ok {
			return nil, fmt.Errorf("step %q: input %q not found in argument registry", s.name, name)
		}
		if v == nil {
			args[i] = reflect.Zero(t.In(i))
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(t.In(i)) {
			return nil, fmt.Errorf("step %q: input %q: %s is not assignable to %s",
				s.name, name, rv.Type(), t.In(i))
		}
		args[i] = rv
	}

	results := s.fn.Call(args)
	if errv := results[len(results)-1]; !errv.IsNil() {
		return nil, errv.Interface().(error)
	}

	returns := make(map[string]any, len(s.returns))
	for i, name := range s.returns {
		returns[name] = results[i].Interface()
	}
	return returns, nil
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n, true
		}
		seen[n] = true
	}
	return "", false
}

func notSubset(sub, super []string) (string, bool) {
	for _, n := range sub {
		if !slices.Contains(super, n) {
			return n, true
		}
	}
	return "", false
}
