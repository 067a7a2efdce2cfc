package nfe

import "fmt"

// Error represents a structured error from the nfe package
type Error interface {
	error
	Code() ErrorCode
	Unwrap() error
}

type ErrorCode string

const (
	ErrCodeValidation    ErrorCode = "validation"
	ErrCodeSerialization ErrorCode = "serialization"
	ErrCodeCertificate   ErrorCode = "certificate"
	ErrCodeSigning       ErrorCode = "signing"
	ErrCodeTransport     ErrorCode = "transport"
	ErrCodeAuthority     ErrorCode = "authority"
	ErrCodeInternal      ErrorCode = "internal"
)

// NfeError represents a structured error from the nfe package
type NfeError struct {

	// code is the nfe error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *NfeError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *NfeError) Code() ErrorCode { return e.code }
func (e *NfeError) Unwrap() error   { return e.wrapped }

// NewValidationError creates a validation error for invalid input.
// Use this for unknown operation codes, unknown states or malformed access keys.
//
// The returned error will have code ErrCodeValidation.
func NewValidationError(msg string) error {
	return &NfeError{code: ErrCodeValidation, message: msg}
}

// WrapValidationError wraps an existing error as a validation error.
//
// The returned error will have code ErrCodeValidation.
func WrapValidationError(err error, msg string) error {
	return &NfeError{code: ErrCodeValidation, message: msg, wrapped: err}
}

// NewSerializationError creates an error for failures building the event XML.
//
// The returned error will have code ErrCodeSerialization.
func NewSerializationError(msg string) error {
	return &NfeError{code: ErrCodeSerialization, message: msg}
}

// WrapSerializationError wraps an existing error as a serialization error.
//
// The returned error will have code ErrCodeSerialization.
func WrapSerializationError(err error, msg string) error {
	return &NfeError{code: ErrCodeSerialization, message: msg, wrapped: err}
}

// NewCertificateError creates a certificate error.
// Use this for unreadable .pfx files, wrong passwords, unsupported key types
// or certificates outside their validity period.
//
// The returned error will have code ErrCodeCertificate.
func NewCertificateError(msg string) error {
	return &NfeError{code: ErrCodeCertificate, message: msg}
}

// WrapCertificateError wraps an existing error as a certificate error.
//
// The returned error will have code ErrCodeCertificate.
func WrapCertificateError(err error, msg string) error {
	return &NfeError{code: ErrCodeCertificate, message: msg, wrapped: err}
}

// NewSigningError creates an XML signature error.
//
// The returned error will have code ErrCodeSigning.
func NewSigningError(msg string) error {
	return &NfeError{code: ErrCodeSigning, message: msg}
}

// WrapSigningError wraps an existing error as an XML signature error.
//
// The returned error will have code ErrCodeSigning.
func WrapSigningError(err error, msg string) error {
	return &NfeError{code: ErrCodeSigning, message: msg, wrapped: err}
}

// NewTransportError creates an error for failures talking to the SEFAZ web service
// (connection refused, TLS handshake, timeout, unreadable body).
//
// The returned error will have code ErrCodeTransport.
func NewTransportError(msg string) error {
	return &NfeError{code: ErrCodeTransport, message: msg}
}

// WrapTransportError wraps an existing error as a transport error.
//
// The returned error will have code ErrCodeTransport.
func WrapTransportError(err error, msg string) error {
	return &NfeError{code: ErrCodeTransport, message: msg, wrapped: err}
}

// NewAuthorityError creates an error for responses where SEFAZ refused the request
// at the web service level (non-2xx status or SOAP fault).
//
// The returned error will have code ErrCodeAuthority.
func NewAuthorityError(msg string) error {
	return &NfeError{code: ErrCodeAuthority, message: msg}
}

// NewInternalError creates an internal error for unexpected failures.
//
// The returned error will have code ErrCodeInternal.
func NewInternalError(msg string) error {
	return &NfeError{code: ErrCodeInternal, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
//
// The returned error will have code ErrCodeInternal.
func WrapInternalError(err error, msg string) error {
	return &NfeError{code: ErrCodeInternal, message: msg, wrapped: err}
}
