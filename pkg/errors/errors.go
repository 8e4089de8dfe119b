package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	ErrProfileIncomplete   = New("PROFILE_INCOMPLETE", http.StatusUnprocessableEntity, "complete your profile before generating matches")
	ErrDuplicateCollege    = New("DUPLICATE_COLLEGE", http.StatusConflict, "this college is already in your list")
	ErrInvitationExpired   = New("INVITATION_EXPIRED", http.StatusGone, "this invitation has expired")
	ErrInvitationUsed      = New("INVITATION_USED", http.StatusGone, "this invitation has already been used")
	ErrInvitationPending   = New("INVITATION_PENDING", http.StatusConflict, "an invitation for this email is already pending")
	ErrAlreadyLinked       = New("ALREADY_LINKED", http.StatusConflict, "this account is already linked to the student")
	ErrModelUnavailable    = New("MODEL_UNAVAILABLE", http.StatusBadGateway, "the AI service is temporarily unavailable")
	ErrModelQuotaExceeded  = New("MODEL_QUOTA_EXCEEDED", http.StatusTooManyRequests, "AI usage limit reached, please try again later")
	ErrMalformedModelReply = New("MALFORMED_MODEL_REPLY", http.StatusBadGateway, "the AI response could not be parsed")

	// ErrCacheMiss signals a cache lookup found nothing. Callers fall back to
	// the source of truth.
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
