// Package llm is the text-generation boundary of GraphLeague.
//
// A Generator turns a prompt plus an optional closed output schema into text.
// Errors are classified as transient (worth retrying) or fatal; only errors
// marked with Transient are retried by callers.
package llm

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrTransient marks a generation failure that may succeed on retry
// (rate limiting, server errors, network trouble).
var ErrTransient = errors.New("transient generation failure")

// Request is one generation call.
type Request struct {
	// System is the instruction that frames the task.
	System string

	// Prompt is the full user turn sent to the model.
	Prompt string

	// Input is the raw user text the prompt was built from. Rule-based
	// generators read it instead of the rendered prompt.
	Input string

	// Schema constrains the output to a JSON document. Nil means free text.
	Schema *jsonschema.Schema

	Temperature float32
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

type transientError struct {
	err error
}

func (e *transientError) Error() string   { return e.err.Error() }
func (e *transientError) Unwrap() []error { return []error{ErrTransient, e.err} }

// Transient marks err as retryable. It returns nil for a nil error.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
