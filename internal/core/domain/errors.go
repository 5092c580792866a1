package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTemporary       = errors.New("temporary failure")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrUpstream        = errors.New("upstream failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ExtractionFailure classifies a failed call to the document extraction backend.
type ExtractionFailure string

const (
	ExtractionFailureServer          ExtractionFailure = "server_error"
	ExtractionFailurePayloadTooLarge ExtractionFailure = "payload_too_large"
	ExtractionFailureBadRequest      ExtractionFailure = "bad_request"
	ExtractionFailureNetwork         ExtractionFailure = "network"
)

// ExtractionError is returned by extraction clients for transport and status failures.
type ExtractionError struct {
	Failure    ExtractionFailure
	StatusCode int
	Detail     string
	Err        error
}

func (e *ExtractionError) Error() string {
	if e == nil {
		return "extraction error"
	}
	msg := fmt.Sprintf("extraction %s", e.Failure)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() []error {
	kind := ErrUpstream
	switch e.Failure {
	case ExtractionFailurePayloadTooLarge:
		kind = ErrPayloadTooLarge
	case ExtractionFailureBadRequest:
		kind = ErrInvalidInput
	case ExtractionFailureNetwork:
		kind = ErrTemporary
	}
	if e.Err == nil {
		return []error{kind}
	}
	return []error{kind, e.Err}
}

// UserMessage is the text shown to the claimant for this failure class.
func (e *ExtractionError) UserMessage() string {
	switch e.Failure {
	case ExtractionFailurePayloadTooLarge:
		return "File too large. Please use an image smaller than 10MB."
	case ExtractionFailureBadRequest:
		return "Invalid image format. Please upload a valid image file (JPG, PNG, etc.)."
	case ExtractionFailureNetwork:
		return "Network error: unable to connect to the document service. Please check your connection and try again."
	default:
		return "Server error occurred while processing the image. Please try again or use a different image."
	}
}
