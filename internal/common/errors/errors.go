// Package errors defines business error codes and error handling.
package errors

import (
	"fmt"
)

// AppError is the application error carried across layers.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new application error.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates an application error wrapping a cause.
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage returns a copy with a different message.
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError returns a copy carrying the underlying cause.
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Common error codes (1000-1999)
var (
	ErrUnknown         = New(1000, "unknown error")
	ErrInvalidParams   = New(1001, "invalid parameters")
	ErrNotFound        = New(1002, "resource not found")
	ErrAlreadyExists   = New(1003, "resource already exists")
	ErrDatabaseError   = New(1004, "database error")
	ErrCacheError      = New(1005, "cache error")
	ErrInternalError   = New(1006, "internal error")
	ErrOperationFailed = New(1007, "operation failed")
)

// Auth error codes (2000-2999)
var (
	ErrUnauthorized     = New(2000, "not logged in")
	ErrTokenExpired     = New(2001, "session expired")
	ErrTokenInvalid     = New(2002, "invalid token")
	ErrPermissionDenied = New(2003, "permission denied")
)

// Booking error codes (3000-3999)
var (
	ErrBookingNotFound   = New(3000, "booking not found")
	ErrInvalidTransition = New(3001, "booking status transition not allowed")
	ErrBookingDates      = New(3002, "checkout must be after checkin")
	ErrOccupancyFields   = New(3003, "occupancy fields do not match property type")
	ErrDuplicateBooking  = New(3004, "booking already exists")
)

// Ticket error codes (4000-4999)
var (
	ErrTicketExpired        = New(4001, "ticket has expired")
	ErrTicketUnavailable    = New(4002, "ticket is not available")
	ErrTicketOwnerCancelled = New(4003, "booking was cancelled by the property owner")
	ErrTicketNotReady       = New(4004, "ticket is not yet available")
)

// Settlement error codes (5000-5999)
var (
	ErrSettlementSkipped = New(5000, "settlement skipped")
	ErrAlreadySettled    = New(5001, "commission already distributed")
	ErrUnresolvableTotal = New(5002, "booking total amount cannot be resolved")
)

// Referral error codes (6000-6999)
var (
	ErrReferrerNotFound = New(6000, "referrer not found")
	ErrReferrerInactive = New(6001, "referrer is inactive")
)

// IsAppError reports whether err is an AppError.
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError converts err to an AppError, wrapping unknown errors.
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// Is reports whether err carries the same code as target.
func Is(err error, target *AppError) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == target.Code
}
