package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/ethicbank/portal-api/internal/api/shared"
	"github.com/ethicbank/portal-api/internal/domain"
	"github.com/ethicbank/portal-api/internal/integration/chat"
	"github.com/ethicbank/portal-api/internal/integration/jupiter"
	"github.com/ethicbank/portal-api/internal/integration/moonpay"
	"github.com/ethicbank/portal-api/internal/integration/stripe"
	"github.com/ethicbank/portal-api/internal/integration/sumsub"
	"github.com/ethicbank/portal-api/internal/integration/vendor"
	"github.com/ethicbank/portal-api/internal/service"
	"github.com/ethicbank/portal-api/internal/service/auth"
	"github.com/ethicbank/portal-api/internal/store"
	"github.com/go-playground/validator/v10"
)

const genericErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the error types themselves.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrUnavailable),
		errors.Is(err, vendor.ErrNotConfigured):
		return http.StatusServiceUnavailable

	case store.IsNotFoundError(err):
		return http.StatusNotFound

	case store.IsDuplicateError(err),
		errors.Is(err, domain.ErrRewardAlreadyRedeemed):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, shared.ErrInvalidJSON),
		errors.Is(err, auth.ErrUnknownProvider),
		errors.Is(err, jupiter.ErrInvalidQuoteRequest),
		errors.Is(err, stripe.ErrInvalidParams),
		errors.Is(err, moonpay.ErrInvalidParams),
		errors.Is(err, sumsub.ErrInvalidParams):
		return http.StatusBadRequest

	case errors.Is(err, chat.ErrBlocked):
		return http.StatusUnprocessableEntity
	}

	if ve, ok := vendor.AsError(err); ok {
		switch ve.Category {
		case vendor.CategoryTimeout:
			return http.StatusGatewayTimeout
		case vendor.CategoryRateLimited:
			return http.StatusTooManyRequests
		case vendor.CategoryNotFound:
			return http.StatusNotFound
		default:
			return http.StatusBadGateway
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// GetSafeErrorMessage returns a client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}

	var unavailable *service.UnavailableError
	switch {
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return "Invalid refresh token"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, auth.ErrUnknownProvider):
		return "Unknown wallet provider"

	case errors.As(err, &unavailable):
		return unavailable.Error()
	case errors.Is(err, service.ErrUnavailable),
		errors.Is(err, vendor.ErrNotConfigured):
		return "Service not available"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrWalletNotFound):
		return "Wallet not found"
	case errors.Is(err, store.ErrTransactionNotFound):
		return "Transaction not found"
	case errors.Is(err, store.ErrInvestmentNotFound):
		return "Investment not found"
	case errors.Is(err, store.ErrSavingsGoalNotFound):
		return "Savings goal not found"
	case errors.Is(err, store.ErrRewardNotFound):
		return "Reward not found"
	case errors.Is(err, store.ErrNotificationNotFound):
		return "Notification not found"
	case store.IsNotFoundError(err):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrWalletExists):
		return "Wallet already linked"
	case errors.Is(err, store.ErrExternalIDExists):
		return "Account already linked to another user"
	case store.IsDuplicateError(err):
		return "Resource already exists"
	case errors.Is(err, domain.ErrRewardAlreadyRedeemed):
		return "Reward already redeemed"

	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid request format"
	case errors.Is(err, domain.ErrValidation):
		return capitalize(err.Error())
	case errors.Is(err, jupiter.ErrInvalidQuoteRequest):
		return "Invalid swap request"
	case errors.Is(err, stripe.ErrInvalidParams):
		return "Invalid payment request"
	case errors.Is(err, moonpay.ErrInvalidParams):
		return "Invalid ramp request"
	case errors.Is(err, sumsub.ErrInvalidParams):
		return "Invalid KYC request"
	case errors.Is(err, chat.ErrBlocked):
		return "The assistant could not answer this message"
	}

	if ve, ok := vendor.AsError(err); ok {
		switch ve.Category {
		case vendor.CategoryTimeout:
			return ve.Vendor + " timed out"
		case vendor.CategoryRateLimited:
			return ve.Vendor + " rate limit reached, retry later"
		case vendor.CategoryNotFound:
			return "Not found at " + ve.Vendor
		default:
			return ve.Vendor + " request failed"
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out"
	}
	return genericErrorMessage
}

// SanitizeValidationError turns validator errors into a message naming the
// first offending field.
func SanitizeValidationError(err error) string {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	if errors.Is(err, domain.ErrValidation) {
		return capitalize(err.Error())
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte", "gt":
		return "too small or too short"
	case "max", "lte", "lt":
		return "too large or too long"
	case "oneof":
		return "invalid value"
	case "uuid", "uuid4":
		return "must be a UUID"
	case "url":
		return "must be a URL"
	case "len":
		return "wrong length"
	case "numeric", "number":
		return "must be a number"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the redacted error. fallback replaces the generic message for 500s.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}

// HandleValidationError answers 400 for a body that failed decoding or
// validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	msg := SanitizeValidationError(err)
	if errors.Is(err, shared.ErrInvalidJSON) {
		msg = "Invalid request format"
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msg, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return strings.TrimSpace(string(r))
}
