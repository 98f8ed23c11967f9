package store

import (
	"errors"
	"fmt"
)

// Store errors shared by every implementation. Lookups scoped to a user
// report rows owned by someone else as not found.
var (
	ErrNotFound  = errors.New("entity not found")
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity covers check and foreign key violations.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed wraps commit failures.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrUserNotFound         = fmt.Errorf("%w: user", ErrNotFound)
	ErrWalletNotFound       = fmt.Errorf("%w: wallet", ErrNotFound)
	ErrTransactionNotFound  = fmt.Errorf("%w: transaction", ErrNotFound)
	ErrInvestmentNotFound   = fmt.Errorf("%w: investment", ErrNotFound)
	ErrSavingsGoalNotFound  = fmt.Errorf("%w: savings goal", ErrNotFound)
	ErrRewardNotFound       = fmt.Errorf("%w: reward", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("%w: notification", ErrNotFound)

	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)
	// ErrExternalIDExists means a wallet provider identity is linked to
	// another user.
	ErrExternalIDExists = fmt.Errorf("%w: external identity", ErrDuplicate)
	// ErrWalletExists means the address is already linked on that chain.
	ErrWalletExists = fmt.Errorf("%w: wallet address", ErrDuplicate)
)

// IsNotFoundError reports whether err is any of the not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any of the duplicate errors.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
