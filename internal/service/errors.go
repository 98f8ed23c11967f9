package service

import (
	"errors"
	"fmt"

	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/store"
)

// ErrUnavailable is matched by every UnavailableError.
var ErrUnavailable = errors.New("service not available")

// UnavailableError reports that a registry service is missing or not
// configured.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string {
	return e.Name + " service not available"
}

// Unwrap lets errors.Is(err, ErrUnavailable) match.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// ServiceError wraps unexpected failures with the operation that failed.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err unless it is an expected condition callers
// branch on (not found, duplicate, validation, unavailable), which is
// returned unchanged.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if store.IsNotFoundError(err) ||
		store.IsDuplicateError(err) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrRewardAlreadyRedeemed) ||
		errors.Is(err, ErrUnavailable) {
		return err
	}
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
