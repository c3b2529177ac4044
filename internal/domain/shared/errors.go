// Package shared holds the error taxonomy, money helpers and message types used
// across the wallet, order, payment and video domains.
package shared

import "errors"

// Error kinds. Domain errors match one of these through errors.Is so the HTTP
// layer can map them to status codes without knowing every concrete type.
var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("not found")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrGateway               = errors.New("gateway error")
	ErrInvalidState          = errors.New("invalid state")
)

// ValidationError describes rejected input
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError is a shorthand for a field-level validation failure
func NewValidationError(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// GatewayError wraps a failure of an external provider. Op names the provider call.
// Callers may retry it with backoff.
type GatewayError struct {
	Provider string
	Op       string
	Err      error
}

func (e *GatewayError) Error() string {
	msg := e.Provider + " " + e.Op + " failed"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// InvalidStateError reports a workflow transition attempted from the wrong state
type InvalidStateError struct {
	Entity string
	From   string
	To     string
}

func (e InvalidStateError) Error() string {
	return "cannot move " + e.Entity + " from " + e.From + " to " + e.To
}

func (e InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// ForbiddenError reports an ownership violation
type ForbiddenError struct {
	Resource string
}

func (e ForbiddenError) Error() string {
	return "access to " + e.Resource + " is forbidden"
}

func (e ForbiddenError) Is(target error) bool { return target == ErrForbidden }
