package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	AccountNotFound     ErrorCode = "account_not_found"
	DestinationNotFound ErrorCode = "destination_not_found"
	MissingDestination  ErrorCode = "missing_destination"
	InvalidAmount       ErrorCode = "invalid_amount"
	InsufficientFunds   ErrorCode = "insufficient_funds"
	SameAccountTransfer ErrorCode = "same_account_transfer"
	DuplicateAccount    ErrorCode = "duplicate_account"
	CustomerConflict    ErrorCode = "customer_conflict"
	EntityNotFound      ErrorCode = "entity_not_found"
	InvalidInput        ErrorCode = "invalid_input"
	StorageFailure      ErrorCode = "storage_failure"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps the error code to the status a handler should respond with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case AccountNotFound, DestinationNotFound, EntityNotFound:
		return http.StatusNotFound
	case DuplicateAccount, CustomerConflict:
		return http.StatusConflict
	case InvalidAmount, InsufficientFunds, MissingDestination, SameAccountTransfer, InvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// From coerces any error into an AppError, wrapping unknown errors as storage
// failures so they surface as 500s without leaking internals.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(StorageFailure, "an unexpected error occurred").WithDetails(err.Error())
}

// Predefined errors for common cases
var (
	ErrAccountNotFound     = NewAppError(AccountNotFound, "account not found")
	ErrDestinationNotFound = NewAppError(DestinationNotFound, "destination account not found")
	ErrMissingDestination  = NewAppError(MissingDestination, "destination account is required for transfers")
	ErrInvalidAmount       = NewAppError(InvalidAmount, "transaction amount must be greater than zero")
	ErrSameAccountTransfer = NewAppError(SameAccountTransfer, "source and destination accounts must differ")
	ErrDuplicateAccount    = NewAppError(DuplicateAccount, "account number already in use")
)
