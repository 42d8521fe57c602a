// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Trade errors
	ErrTradeNotFound = &Error{Code: "TRADE_NOT_FOUND", Message: "trade not found"}
	ErrNoTrades      = &Error{Code: "NO_TRADES", Message: "no trades available"}
	ErrInvalidTrade  = &Error{Code: "INVALID_TRADE", Message: "trade record invalid"}

	// Request errors
	ErrInvalidRequest = &Error{Code: "INVALID_REQUEST", Message: "request invalid"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Storage errors
	ErrStorageFailed = &Error{Code: "STORAGE_FAILED", Message: "storage operation failed"}
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archive operation failed"}

	// Notifier errors
	ErrNotifierFailed = &Error{Code: "NOTIFIER_FAILED", Message: "notifier failed"}
)

// ValidateTrade checks the identifying fields a trade record must carry.
func ValidateTrade(t Trade) error {
	if t.ID == "" {
		return WrapError(ErrInvalidTrade, fmt.Errorf("id is required"))
	}
	if !t.Direction.IsValid() {
		return WrapError(ErrInvalidTrade, fmt.Errorf("trade %s: unknown direction %q", t.ID, t.Direction))
	}
	if t.EntryPrice <= 0 {
		return WrapError(ErrInvalidTrade, fmt.Errorf("trade %s: entry price must be positive", t.ID))
	}
	if t.Status != StatusOpen && t.Status != StatusClosed {
		return WrapError(ErrInvalidTrade, fmt.Errorf("trade %s: unknown status %q", t.ID, t.Status))
	}
	if t.EntryTime.IsZero() {
		return WrapError(ErrInvalidTrade, fmt.Errorf("trade %s: entry time is required", t.ID))
	}
	return nil
}
