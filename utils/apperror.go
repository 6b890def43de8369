package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind names a class of failure surfaced to API callers.
type ErrorKind string

const (
	KindValidation          ErrorKind = "ValidationError"
	KindConflict            ErrorKind = "ConflictError"
	KindPaymentInitiation   ErrorKind = "PaymentInitiationError"
	KindWebhookVerification ErrorKind = "WebhookVerificationError"
	KindNotFound            ErrorKind = "NotFoundError"
	KindInvalidState        ErrorKind = "InvalidStateError"
	// KindUnavailable marks a transient failure the caller may retry.
	KindUnavailable ErrorKind = "ServiceUnavailableError"
)

// AppError is a classified domain error. Two AppErrors match with errors.Is
// when their kinds are equal, so the sentinels below work as targets.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation          = &AppError{Kind: KindValidation}
	ErrConflict            = &AppError{Kind: KindConflict}
	ErrPaymentInitiation   = &AppError{Kind: KindPaymentInitiation}
	ErrWebhookVerification = &AppError{Kind: KindWebhookVerification}
	ErrNotFound            = &AppError{Kind: KindNotFound}
	ErrInvalidState        = &AppError{Kind: KindInvalidState}
	ErrUnavailable         = &AppError{Kind: KindUnavailable}
)

func NewValidationError(format string, args ...any) error {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidStateError(format string, args ...any) error {
	return &AppError{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func NewPaymentInitiationError(msg string, err error) error {
	return &AppError{Kind: KindPaymentInitiation, Message: msg, Err: err}
}

func NewWebhookVerificationError(msg string, err error) error {
	return &AppError{Kind: KindWebhookVerification, Message: msg, Err: err}
}

func NewUnavailableError(msg string, err error) error {
	return &AppError{Kind: KindUnavailable, Message: msg, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// StatusFor maps an error to the HTTP status returned to clients.
func StatusFor(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case KindValidation, KindWebhookVerification:
		return http.StatusBadRequest
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindPaymentInitiation:
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
