package core

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies why an analysis could not produce a model verdict
type ErrorKind string

const (
	KindExtractionFailed     ErrorKind = "extraction_failed"
	KindCredentialMissing    ErrorKind = "credential_missing"
	KindTransportFailure     ErrorKind = "transport_failure"
	KindMalformedResponse    ErrorKind = "malformed_response"
	KindUpstreamParseFailure ErrorKind = "upstream_parse_failure"
)

// ErrExtractionFailed is returned when no usable email could be read from a document
var ErrExtractionFailed = errors.New("could not extract email data")

// AnalysisError carries a failure kind alongside the user facing message
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewError creates an AnalysisError of the given kind
func NewError(kind ErrorKind, cause error, format string, args ...any) *AnalysisError {
	return &AnalysisError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// ErrCredentialMissing is the failure reported when no API key is configured
func ErrCredentialMissing() *AnalysisError {
	return NewError(KindCredentialMissing, nil,
		"API key not found. Please set your API key before analyzing emails.")
}

// KindOf returns the failure kind of err. Unclassified errors count as transport failures.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, ErrExtractionFailed) {
		return KindExtractionFailed
	}
	return KindTransportFailure
}

// FailureFromError converts any error into a Failure outcome
func FailureFromError(err error) Failure {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out: " + msg
	}
	return Failure{Kind: KindOf(err), Message: msg}
}
