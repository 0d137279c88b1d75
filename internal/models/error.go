package models

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a standardized error response for the API
type APIError struct {
	Kind    string                 `json:"kind"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NewAPIError creates a new API error with the given code and message
func NewAPIError(kind ErrorKind, code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Kind:    string(kind),
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// ErrorKind classifies failures so callers can branch on them
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindValidation     ErrorKind = "validation"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindInfrastructure ErrorKind = "infrastructure"
)

// HTTPStatus maps an error kind to the response status
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error code constants
const (
	// General errors
	ErrBadRequest     = "BAD_REQUEST"
	ErrForbidden      = "FORBIDDEN"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"

	// Authentication errors
	ErrAuthRequired       = "authorization_required"
	ErrMalformedInitData  = "malformed_init_data"
	ErrMissingHash        = "missing_hash"
	ErrInvalidAuthDate    = "invalid_auth_date"
	ErrInitDataExpired    = "init_data_expired"
	ErrInvalidSignature   = "invalid_signature"
	ErrInvalidUserPayload = "invalid_user_payload"
	ErrInvalidToken       = "invalid_token"

	// Catalog errors
	ErrMenuItemNotFound     = "menu_item_not_found"
	ErrMenuItemInvalid      = "menu_item_invalid_data"
	ErrMenuItemExists       = "menu_item_exists"
	ErrMenuItemInUse        = "menu_item_in_use"
	ErrStoreNotFound        = "store_not_found"
	ErrPromotionNotFound    = "promotion_not_found"
	ErrPromotionInvalidData = "promotion_invalid_data"

	// Discount errors
	ErrDiscountNotFound    = "discount_not_found"
	ErrDiscountInvalidData = "discount_invalid_data"
	ErrDiscountExists      = "discount_exists"
	ErrDiscountInvalid     = "discount_invalid"
	ErrDiscountNotStarted  = "discount_not_started"
	ErrDiscountExpired     = "discount_expired"
	ErrDiscountExhausted   = "discount_exhausted"

	// Order errors
	ErrPickupTooSoon   = "pickup_too_soon"
	ErrEmptyCart       = "empty_cart"
	ErrItemsNotFound   = "items_not_found"
	ErrItemUnavailable = "item_unavailable"
	ErrInvalidQuantity = "invalid_quantity"
	ErrOrderNotFound   = "order_not_found"
	ErrOrderForbidden  = "order_forbidden"

	// Ancillary errors
	ErrUserNotFound   = "user_not_found"
	ErrNoSubscribers  = "no_subscribers"
	ErrUnsupportedFmt = "unsupported_format"
	ErrNoBackups      = "no_backups"
	ErrBackupFailed   = "backup_failed"
	ErrClientNotFound = "client_not_found"
	ErrPersistence    = "persistence_failure"
)

// AppError is the error type returned by services. Kind drives the HTTP status,
// Code is stable for UI branching and Message is safe to show to the user.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]interface{}
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

// WithDetails attaches extra fields rendered in the API response
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// APIError renders the error for clients. Infrastructure causes are not included.
func (e *AppError) APIError() APIError {
	return NewAPIError(e.Kind, e.Code, e.Message, e.Details)
}

func newAppError(kind ErrorKind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func NewAuthenticationError(code, message string) *AppError {
	return newAppError(KindAuthentication, code, message)
}

func NewAuthorizationError(code, message string) *AppError {
	return newAppError(KindAuthorization, code, message)
}

func NewValidationError(code, message string) *AppError {
	return newAppError(KindValidation, code, message)
}

func NewNotFoundError(code, message string) *AppError {
	return newAppError(KindNotFound, code, message)
}

func NewConflictError(code, message string) *AppError {
	return newAppError(KindConflict, code, message)
}

// NewInfrastructureError wraps a persistence or process failure. The cause is
// kept for logging and never rendered to the client.
func NewInfrastructureError(code string, err error) *AppError {
	return &AppError{Kind: KindInfrastructure, Code: code, Message: "internal error", Err: err}
}

// AsAppError extracts an *AppError from err, classifying unknown errors as infrastructure
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInfrastructureError(ErrInternalServer, err)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// OAuth2Error represents an OAuth2 error response (RFC 6749)
type OAuth2Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// NewOAuth2Error creates a new OAuth2 error response
func NewOAuth2Error(error, description string) OAuth2Error {
	return OAuth2Error{
		Error:            error,
		ErrorDescription: description,
	}
}
