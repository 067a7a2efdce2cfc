package manifestacao

// errors.go defines the errors raised before a request reaches the manifestation pipeline.

import "fmt"

// RequestError represents a request rejected by the HTTP layer.
type RequestError struct {
	// code determines the HTTP status
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *RequestError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *RequestError) Code() ErrorCode { return e.code }
func (e *RequestError) Unwrap() error   { return e.wrapped }

type ErrorCode string

const (
	// ErrCodeMalformedRequest is used when the body is not valid JSON for a ManifestationRequest
	ErrCodeMalformedRequest ErrorCode = "malformed_request"

	// ErrCodeRequestTooLarge is used when the request body is too large
	// - this is only used in the middleware
	ErrCodeRequestTooLarge ErrorCode = "request_too_large"

	// ErrCodeRateLimitExceeded is used when the rate limit is exceeded
	// - this is only used in the middleware
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"
)

// NewMalformedRequestError creates an error for malformed requests.
func NewMalformedRequestError(msg string) error {
	return &RequestError{code: ErrCodeMalformedRequest, message: msg}
}

// WrapMalformedRequestError wraps an existing error as a malformed request error.
func WrapMalformedRequestError(err error, msg string) error {
	return &RequestError{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

// NewRequestTooLargeError creates a request too large error.
//
// The returned error will have code ErrCodeRequestTooLarge.
func NewRequestTooLargeError(msg string) error {
	return &RequestError{code: ErrCodeRequestTooLarge, message: msg}
}

// NewRateLimitError creates a rate limit exceeded error.
//
// The returned error will have code ErrCodeRateLimitExceeded.
func NewRateLimitError(msg string) error {
	return &RequestError{code: ErrCodeRateLimitExceeded, message: msg}
}
