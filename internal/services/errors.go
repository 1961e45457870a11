package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// Error type tags used across the engine.
const (
	TypeValidation     = "VALIDATION_ERROR"
	TypeNotFound       = "NOT_FOUND"
	TypeTransientStore = "TRANSIENT_STORE_ERROR"
	TypePushDelivery   = "PUSH_DELIVERY_ERROR"
	TypeInternal       = "INTERNAL_ERROR"
)

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error (HTTP 400)
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates a not found error (HTTP 404)
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewTransientStoreError wraps a backing-store read/write fault. The
// duplicate-key idempotency signal never takes this path; repositories
// translate it to a (false, nil) insert result instead.
func NewTransientStoreError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeTransientStore,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// NewPushDeliveryError records a per-provider delivery failure. These
// are aggregated into dispatch results and never propagate out of the
// award or notify paths.
func NewPushDeliveryError(provider string, cause error) *ServiceError {
	return &ServiceError{
		Type:    TypePushDelivery,
		Message: fmt.Sprintf("push delivery via %s failed", provider),
		Details: map[string]interface{}{"provider": provider},
		Cause:   cause,
	}
}

// NewInternalError creates an internal server error (HTTP 500)
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// ===============================
// ERROR INSPECTION
// ===============================

// IsNotFound reports whether err is a NOT_FOUND service error
func IsNotFound(err error) bool {
	return hasType(err, TypeNotFound)
}

// IsValidation reports whether err is a VALIDATION_ERROR service error
func IsValidation(err error) bool {
	return hasType(err, TypeValidation)
}

func hasType(err error, errType string) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Type == errType
	}
	return false
}

// GetServiceError extracts a ServiceError from an error chain, or nil.
func GetServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
