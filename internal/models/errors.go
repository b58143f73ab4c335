package models

import "fmt"

// TransportError indicates the model endpoint could not be reached, refused
// the request, or timed out. Strategies may retry; it is never dropped
// silently.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError indicates model output could not be converted into a
// structurally valid ranking.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse ranking: %s", e.Reason)
}

// NormalizationError indicates a method identifier that cannot be
// canonicalized. The entry is excluded from scoring for that bug only.
type NormalizationError struct {
	Identifier string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize identifier %q", e.Identifier)
}

// ConfigurationError covers inconsistencies between results and their
// inputs, such as a result with no ground truth. The affected bug is
// excluded from aggregation; the run continues.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }
