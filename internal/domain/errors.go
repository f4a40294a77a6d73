package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrExternalService   = errors.New("external service failed")

	ErrTenantNotFound          = fmt.Errorf("tenant: %w", ErrNotFound)
	ErrClientNotFound          = fmt.Errorf("client: %w", ErrNotFound)
	ErrProviderNotFound        = fmt.Errorf("provider: %w", ErrNotFound)
	ErrTaxRateNotFound         = fmt.Errorf("tax rate: %w", ErrNotFound)
	ErrQuoteNotFound           = fmt.Errorf("quote: %w", ErrNotFound)
	ErrInvoiceNotFound         = fmt.Errorf("invoice: %w", ErrNotFound)
	ErrPurchaseInvoiceNotFound = fmt.Errorf("purchase invoice: %w", ErrNotFound)
	ErrTemplateNotFound        = fmt.Errorf("recurring template: %w", ErrNotFound)
	ErrRecurringRunNotFound    = fmt.Errorf("recurring run: %w", ErrNotFound)
)

// ValidationError rejects input before any mutation. Its message is shown to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// TransitionError is returned when a document's current status does not allow
// the requested action. No state is changed when it is returned.
type TransitionError struct {
	Entity string
	From   string
	Action Action
	Reason string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s in status %s cannot %s", e.Entity, e.From, e.Action)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ExternalServiceError wraps a failure of the PDF renderer, mailer or object store.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() []error { return []error{ErrExternalService, e.Err} }
