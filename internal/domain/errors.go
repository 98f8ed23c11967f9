package domain

import "errors"

// Common domain errors used across the application. All but ErrValidation
// and ErrUnauthorized wrap ErrValidation.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Entity-specific errors wrap it so callers can test for either.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = validationError("invalid ID")

	// ErrInvalidAmount is returned for unparseable, negative or zero amounts.
	ErrInvalidAmount = validationError("invalid amount")

	// ErrInvalidCurrency is returned for malformed currency or asset codes.
	ErrInvalidCurrency = validationError("invalid currency")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = validationError("content cannot be empty")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

func validationError(msg string) error {
	return &fieldError{msg: msg}
}

type fieldError struct{ msg string }

func (e *fieldError) Error() string { return e.msg }

func (e *fieldError) Unwrap() error { return ErrValidation }
