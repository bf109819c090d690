// Package errors defines the error taxonomy for the token SDK.
//
// All SDK errors are represented as TokenError, which provides:
//   - Code: Machine-readable error identifier
//   - Message: Human-readable error description
//   - Layer: Which component layer produced the error (ledger, token, host, observer, config)
//   - Cause: Underlying error, if any
//   - Context: Additional error details (account, amount, etc.)
//
// Every user-visible rejection reason of the token core maps to a distinct
// code, so integrators can branch on failure causes. Use the provided
// constructor functions (NewLedgerError, NewTokenError, etc.) to create
// properly typed errors with automatic layer assignment.
package errors

import "fmt"

// Code is a machine-readable error identifier.
type Code string

// Error codes - Ledger layer
const (
	INSUFFICIENT_BALANCE   Code = "INSUFFICIENT_BALANCE"
	INSUFFICIENT_ALLOWANCE Code = "INSUFFICIENT_ALLOWANCE"
	SUPPLY_OVERFLOW        Code = "SUPPLY_OVERFLOW"
	TRANSFERS_PAUSED       Code = "TRANSFERS_PAUSED"
	INVALID_AMOUNT         Code = "INVALID_AMOUNT"
)

// Error codes - Token layer
const (
	FEATURE_DISABLED       Code = "FEATURE_DISABLED"
	NOT_OWNER              Code = "NOT_OWNER"
	OWNER_UNSET            Code = "OWNER_UNSET"
	SALE_NOT_CONFIGURED    Code = "SALE_NOT_CONFIGURED"
	NOT_ON_SALE            Code = "NOT_ON_SALE"
	INSUFFICIENT_FUNDS     Code = "INSUFFICIENT_FUNDS"
	INSUFFICIENT_SUPPLY    Code = "INSUFFICIENT_SUPPLY"
	INVALID_ACCOUNT        Code = "INVALID_ACCOUNT"
	CONSTRUCTION_FAILED    Code = "CONSTRUCTION_FAILED"
	PAYMENT_FORWARD_FAILED Code = "PAYMENT_FORWARD_FAILED"
	TRANSITION_INVALID     Code = "TRANSITION_INVALID"
)

// Error codes - Host layer
const (
	SIGNER_ERROR      Code = "SIGNER_ERROR"
	SUBMISSION_FAILED Code = "SUBMISSION_FAILED"
)

// Error codes - Observer layer
const (
	STREAM_ERROR        Code = "STREAM_ERROR"
	STREAM_DISCONNECTED Code = "STREAM_DISCONNECTED"
	CURSOR_SAVE_FAILED  Code = "CURSOR_SAVE_FAILED"
)

// Error codes - Config layer
const (
	CONFIG_READ_FAILED Code = "CONFIG_READ_FAILED"
	CONFIG_INVALID     Code = "CONFIG_INVALID"
)

// TokenError is the base error type for all SDK errors.
type TokenError struct {
	Code    Code
	Message string
	Layer   string // "ledger", "token", "host", "observer", "config"
	Cause   error
	Context map[string]any
}

// Error returns a formatted error string.
func (e *TokenError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Layer, e.Code, e.Message)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error, enabling error chain inspection.
func (e *TokenError) Unwrap() error {
	return e.Cause
}

// NewLedgerError creates a ledger layer error.
func NewLedgerError(code Code, message string, cause error) *TokenError {
	return &TokenError{
		Code:    code,
		Message: message,
		Layer:   "ledger",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewTokenError creates a token layer error.
func NewTokenError(code Code, message string, cause error) *TokenError {
	return &TokenError{
		Code:    code,
		Message: message,
		Layer:   "token",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewHostError creates a host layer error.
func NewHostError(code Code, message string, cause error) *TokenError {
	return &TokenError{
		Code:    code,
		Message: message,
		Layer:   "host",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewObserverError creates an observer layer error.
func NewObserverError(code Code, message string, cause error) *TokenError {
	return &TokenError{
		Code:    code,
		Message: message,
		Layer:   "observer",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewConfigError creates a config layer error.
func NewConfigError(code Code, message string, cause error) *TokenError {
	return &TokenError{
		Code:    code,
		Message: message,
		Layer:   "config",
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// Is checks if the target error is a TokenError with the same code.
func (e *TokenError) Is(target error) bool {
	if target == nil {
		return false
	}
	other, ok := target.(*TokenError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// As checks if target is a TokenError and assigns it.
func As(err error, target **TokenError) bool {
	if err == nil {
		return false
	}
	if v, ok := err.(*TokenError); ok {
		*target = v
		return true
	}
	return false
}

// HasCode reports whether err is a TokenError carrying the given code,
// looking through wrapped causes.
func HasCode(err error, code Code) bool {
	for err != nil {
		if te, ok := err.(*TokenError); ok && te.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
