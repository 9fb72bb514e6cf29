package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking sensitive details)
// - Meta: optional details (field, reason, etc.)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// ErrValidationFailed carries per-field messages from the schema validation
// layer. Meta is the field path -> message map rendered to the client.
func ErrValidationFailed(fields map[string]string) *Error {
	return WithMeta(New(KindValidation, "validation_failed", "validation failed"), fields)
}

// ----------------------
// Credential errors
// ----------------------

// ErrInvalidCredentials covers both unknown email and wrong password.
// The message is deliberately identical for both so callers cannot probe
// which emails are registered.
func ErrInvalidCredentials() *Error {
	return New(KindValidation, "invalid_credentials", "invalid email or password")
}

// ErrAccountLocked rejects a login attempted inside the lock window. The
// remaining time is the one detail the design chooses to reveal.
func ErrAccountLocked(remaining time.Duration) *Error {
	minutes := int(remaining.Minutes())
	if remaining > time.Duration(minutes)*time.Minute {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return WithMeta(
		New(KindForbidden, "account_locked",
			fmt.Sprintf("account is locked, try again in %d minutes", minutes)),
		map[string]string{"retry_after_minutes": fmt.Sprintf("%d", minutes)},
	)
}

// ErrAccountJustLocked marks the failed attempt that crossed the lockout
// threshold. Distinct copy so the user learns why further attempts fail.
func ErrAccountJustLocked(threshold int, lockFor time.Duration) *Error {
	return New(KindForbidden, "account_just_locked",
		fmt.Sprintf("account locked for %d hours after %d failed login attempts",
			int(lockFor.Hours()), threshold))
}

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "email already registered")
}

// ----------------------
// Token errors (401)
// ----------------------

func ErrTokenMissing() *Error {
	return New(KindAuth, "token_missing", "no token provided")
}

func ErrTokenInvalid() *Error {
	return New(KindAuth, "token_invalid", "invalid token")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, "token_expired", "token is expired")
}

// ErrTokenRejected is the only token failure the session guard surfaces.
// Expired and malformed/tampered tokens collapse into it so the response
// never reveals which check failed.
func ErrTokenRejected() *Error {
	return New(KindAuth, "token_rejected", "invalid or expired token")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrAccountNotFound() *Error {
	return New(KindNotFound, "account_not_found", "account not found")
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "too many requests"), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
