package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Stage is the per-step lifecycle marker. It only ever moves forward:
// not_started → started → succeeded. A step that failed stays at started;
// steps after a failure stay at not_started.
type Stage string

const (
	StageNotStarted Stage = "not_started"
	StageStarted    Stage = "started"
	StageSucceeded  Stage = "succeeded"
)

// StepRecord is one step's entry in the feedback document.
//
// JSON fields are declared in alphabetical order so the serialized document
// has sorted keys throughout (encoding/json already sorts map keys).
type StepRecord struct {
	Name    string         `json:"name"`
	Outputs map[string]any `json:"outputs"`
	Stage   Stage          `json:"stage"`
}

// Feedback is the structured report of one run: every declared step in
// original order at whatever stage it reached, plus the error message and
// raise-site stack when a step failed.
type Feedback struct {
	Error      string        `json:"error,omitempty"`
	ErrorStack []string      `json:"error_stack,omitempty"`
	Steps      []*StepRecord `json:"steps"`
}

func newFeedback(steps []*Step) *Feedback {
	records := make([]*StepRecord, len(steps))
	for i, s := range steps {
		records[i] = &StepRecord{
			Name:    s.name,
			Outputs: map[string]any{},
			Stage:   StageNotStarted,
		}
	}
	return &Feedback{Steps: records}
}

func (f *Feedback) setError(e *Error) {
	f.Error = e.Error()
	f.ErrorStack = e.Stack()
}

// Render serializes the document as 2-space-indented JSON with sorted keys.
// Identical runs produce byte-identical output.
func (f *Feedback) Render() ([]byte, error) {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("rendering feedback: %w", err)
	}
	return data, nil
}

// WriteFile writes the document to path as UTF-8 JSON.
func (f *Feedback) WriteFile(path string) error {
	data, err := f.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing feedback file: %w", err)
	}
	return nil
}

// Print writes the document to w preceded by the literal "Feedback:" line.
func (f *Feedback) Print(w io.Writer) error {
	data, err := f.Render()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Feedback:\n%s\n", data); err != nil {
		return fmt.Errorf("printing feedback: %w", err)
	}
	return nil
}

// Emit writes the document to path, or to standard output when path is
// empty.
func (f *Feedback) Emit(path string) error {
	if path == "" {
		return f.Print(os.Stdout)
	}
	return f.WriteFile(path)
}
