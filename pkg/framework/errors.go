package framework

import "strings"

// AggregatedError collects the errors of Runnables stopped together.
type AggregatedError struct {
	Errors []error
}

// Error implements error.
// A single error is reported as is.
func (e *AggregatedError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	for n, err := range e.Errors {
		if n == 0 {
			sb.WriteString("Multiple errors:")
		}
		sb.WriteByte('\n')
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *AggregatedError) Unwrap() []error {
	return e.Errors
}

// Add collects non-nil errors.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil when nothing was collected, otherwise e.
func (e *AggregatedError) Aggregate() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
