package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// User validation errors
var (
	ErrEmptyUserID       = validationError("user ID cannot be empty")
	ErrInvalidEmail      = validationError("invalid email format")
	ErrEmptyEmail        = validationError("email cannot be empty")
	ErrPasswordTooShort  = validationError("password must be at least 12 characters long")
	ErrPasswordTooLong   = validationError("password must be at most 72 characters long")
	ErrEmptyPassword     = validationError("password cannot be empty")
	ErrInvalidExternalID = validationError("external identity must be provider:subject")
	ErrInvalidKYCStatus  = validationError("invalid KYC status")
)

// KYCStatus tracks identity verification of a user.
type KYCStatus string

// Possible KYC states
const (
	KYCStatusNone     KYCStatus = "none"
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

var validate = validator.New()

// User is a portal account. Users sign up either with email and password or
// through a wallet authentication provider, in which case ExternalID holds
// "provider:subject" and no password is set.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name,omitempty"`
	Password       string    `json:"-"` // Plaintext, only set transiently before hashing
	HashedPassword string    `json:"-"`
	ExternalID     string    `json:"-"`
	KYCStatus      KYCStatus `json:"kyc_status"`
	KYCApplicantID string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a password user. The caller must hash the password before
// storing the user.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.TrimSpace(email),
		Password:  password,
		KYCStatus: KYCStatusNone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// NewExternalUser creates a user provisioned from a wallet provider identity.
// Email is optional for such users.
func NewExternalUser(provider, subject, email string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:         uuid.New(),
		Email:      strings.TrimSpace(email),
		ExternalID: ExternalID(provider, subject),
		KYCStatus:  KYCStatusNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// ExternalID builds the identity key stored for provider users.
func ExternalID(provider, subject string) string {
	if provider == "" || subject == "" {
		return ""
	}
	return provider + ":" + subject
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.ExternalID == "" && u.Email == "" {
		return ErrEmptyEmail
	}
	if u.Email != "" && validate.Var(u.Email, "required,email") != nil {
		return ErrInvalidEmail
	}

	if u.ExternalID != "" && !strings.Contains(u.ExternalID, ":") {
		return ErrInvalidExternalID
	}

	switch u.KYCStatus {
	case "", KYCStatusNone, KYCStatusPending, KYCStatusApproved, KYCStatusRejected:
	default:
		return ErrInvalidKYCStatus
	}

	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
		return nil
	}

	if u.HashedPassword == "" && u.ExternalID == "" {
		return ErrEmptyPassword
	}
	return nil
}

// HasPassword reports whether the user can log in with a password.
func (u *User) HasPassword() bool {
	return u.HashedPassword != ""
}
