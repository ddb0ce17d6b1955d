package analysis

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a raw AI payload could not be normalized.
// Kinds are data, not control flow: callers switch on them to decide
// what to show the user, and nothing past the normalization boundary
// ever panics or bubbles an untyped error.
type ErrorKind string

const (
	// KindToolReportedFailure means the envelope itself declared the
	// call unsuccessful (a top-level error field, or success/ok false).
	KindToolReportedFailure ErrorKind = "tool_reported_failure"
	// KindUnrecognizedShape means no extraction strategy matched.
	KindUnrecognizedShape ErrorKind = "unrecognized_shape"
	// KindMissingParameters means a JSON object was found but it lacks
	// the parameters field.
	KindMissingParameters ErrorKind = "missing_parameters"
	// KindMalformedJSON means a strategy matched a string payload but
	// every parse attempt failed.
	KindMalformedJSON ErrorKind = "malformed_json"
)

// NormalizationError is the only error type Normalize returns.
type NormalizationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *NormalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// KindFromError extracts the kind from a normalization failure, or ""
// when err is not a *NormalizationError.
func KindFromError(err error) ErrorKind {
	var ne *NormalizationError
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return ""
}
