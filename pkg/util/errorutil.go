package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors. The HTTP layer renders it
// in the platform envelope {success, message, data}.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidationError(message string) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest)
}

func NewNotFound(resource string) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden)
}

func NewConflict(message string) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict)
}

// NewInternal wraps an unexpected failure behind a stable client-facing
// message; the cause stays attached for logs and dev-mode detail.
func NewInternal(message string, err error) error {
	if message == "" {
		message = "internal server error"
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
