package framework

import (
	"context"
	"strings"
)

// AggregatedError aggregates multiple errors.
type AggregatedError struct {
	Errors []error
}

// Error lists every aggregated error on its own line.
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("multiple errors:")
	for _, err := range e.Errors {
		sb.WriteString("\n")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the aggregated errors to errors.Is and errors.As.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}

// Add adds errors to be aggregated. nil will be skipped.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil if no error happened, the error itself if only
// one happened, or the AggregatedError.
func (e *AggregatedError) Aggregate() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	}
	return e
}

// InterruptedError reports a Runnable stopped before it completed.
type InterruptedError struct {
	Name string
	Err  error
}

// Error implements error
func (e *InterruptedError) Error() string {
	return e.Name + " interrupted: " + e.Err.Error()
}

// Unwrap returns the cause, usually the context error.
func (e *InterruptedError) Unwrap() error {
	return e.Err
}

// MustComplete wraps a Runnable which fails when its context is done
// before it returns successfully. Any error returned after cancellation
// becomes an InterruptedError, so Wait reports it.
func MustComplete(runnable Runnable) Runnable {
	name := NameOf(runnable, "task")
	return NamedRun(name, RunnableFunc(func(ctx context.Context) error {
		err := runnable.Run(ctx)
		if err != nil && ctx.Err() != nil {
			return &InterruptedError{Name: name, Err: err}
		}
		return err
	}))
}
