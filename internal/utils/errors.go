package utils

import "errors"

// Common application errors used across services.
var (
	ErrNotFound           = errors.New("NOT_FOUND")
	ErrValidation         = errors.New("VALIDATION_ERROR")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrInactiveUser       = errors.New("INACTIVE_USER")
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidDate        = errors.New("INVALID_DATE")
	ErrInvalidDateRange   = errors.New("INVALID_DATE_RANGE")
	ErrInvalidStatus      = errors.New("INVALID_STATUS")
	ErrQuoteNotCancelable = errors.New("QUOTE_NOT_CANCELABLE")
	ErrDefaultOffice      = errors.New("DEFAULT_OFFICE_REQUIRED")
	ErrDuplicateSerial    = errors.New("DUPLICATE_SERIAL_NUMBER")
)
