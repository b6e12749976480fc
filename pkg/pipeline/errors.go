package pipeline

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

// Kind classifies a domain error.
type Kind string

const (
	KindNotFound          Kind = "not-found"
	KindBadExtension      Kind = "bad-extension"
	KindInvalidXML        Kind = "invalid-xml"
	KindInvalidLayers     Kind = "invalid-layers"
	KindGenerationFailure Kind = "generation-failure"
)

// Error is the one failure family the executor catches. Steps report
// expected validation failures by returning one of these; any other error
// escapes the run untouched.
//
// The message is a text/template over Fields (sprig functions available),
// rendered lazily by Error(). The call stack is captured at the raise site.
type Error struct {
	Kind   Kind
	Fields map[string]any

	message string
	trace   error
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// NewError creates a domain error of the given kind. The message is a
// template rendered over fields, e.g.
//
//	NewError(KindNotFound, `file {{ .path | quote }} does not exist`, map[string]any{"path": p})
func NewError(kind Kind, message string, fields map[string]any) *Error {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Error{
		Kind:    kind,
		Fields:  fields,
		message: message,
		trace:   errors.New(string(kind)),
	}
}

func (e *Error) Error() string {
	tmpl, err := template.New(string(e.Kind)).Funcs(sprig.FuncMap()).Parse(e.message)
	if err != nil {
		return fmt.Sprintf("%s %v", e.message, e.Fields)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, e.Fields); err != nil {
		return fmt.Sprintf("%s %v", e.message, e.Fields)
	}
	return b.String()
}

// Stack returns the raise-site call stack, one frame per entry, innermost
// first. NewError's own frame is dropped.
func (e *Error) Stack() []string {
	st, ok := e.trace.(stackTracer)
	if !ok {
		return nil
	}
	frames := st.StackTrace()
	if len(frames) > 1 {
		frames = frames[1:]
	}
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, fmt.Sprintf("%+v", f))
	}
	return out
}
