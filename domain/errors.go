package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrAgentNotFound        = NewError(ErrCodeNotFound, "agent not found")
	ErrListingNotFound      = NewError(ErrCodeNotFound, "listing not found")
	ErrPeriodNotFound       = NewError(ErrCodeNotFound, "rent period not found")
	ErrShowingNotFound      = NewError(ErrCodeNotFound, "showing not found")
	ErrPhotoNotFound        = NewError(ErrCodeNotFound, "photo not found")
	ErrAddressNotFound      = NewError(ErrCodeNotFound, "address not found")
	ErrProposalNotFound     = NewError(ErrCodeNotFound, "proposal not found")
	ErrClaimNotFound        = NewError(ErrCodeNotFound, "claim not found")
	ErrRegionNotFound       = NewError(ErrCodeNotFound, "region not found")
	ErrSessionNotFound      = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload       = NewError(ErrCodeInvalid, "invalid payload")
	ErrSubscriptionInactive = NewError(ErrCodeForbidden, "subscription is inactive")
	ErrPaymentInProgress    = NewError(ErrCodeConflict, "payment already in progress")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return code == ErrCodeInvalid
	}
	var gErr *GatewayError
	if errors.As(err, &gErr) {
		return code == ErrCodeUnavailable
	}
	return false
}

// ValidationError reports missing or invalid listing input. It blocks the action that produced it.
type ValidationError struct {
	Fields   []string
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	var parts []string
	if len(e.Fields) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Fields, ", "))
	}
	parts = append(parts, e.Problems...)
	if len(parts) == 0 {
		return "validation failed"
	}
	return strings.Join(parts, "; ")
}

// Missing records a required field that was absent.
func (e *ValidationError) Missing(field string) {
	e.Fields = append(e.Fields, field)
}

// Invalidf records a field that was present but unacceptable.
func (e *ValidationError) Invalidf(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// OrNil returns nil when nothing was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || (len(e.Fields) == 0 && len(e.Problems) == 0) {
		return nil
	}
	return e
}

// GatewayError wraps a failure of an external boundary (geocoding, payment, photo storage).
type GatewayError struct {
	Gateway string
	Err     error
}

func (e *GatewayError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Gateway + " gateway failed"
	}
	return fmt.Sprintf("%s gateway failed: %v", e.Gateway, e.Err)
}

func (e *GatewayError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewGatewayError wraps err as a failure of the named gateway.
func NewGatewayError(gateway string, err error) *GatewayError {
	return &GatewayError{Gateway: gateway, Err: err}
}
