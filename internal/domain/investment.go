package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImpactCategory tags an investment with its ethical theme.
type ImpactCategory string

// Impact categories
const (
	ImpactRenewableEnergy ImpactCategory = "renewable_energy"
	ImpactSocialHousing   ImpactCategory = "social_housing"
	ImpactMicrofinance    ImpactCategory = "microfinance"
	ImpactEducation       ImpactCategory = "education"
	ImpactHealth          ImpactCategory = "health"
	ImpactGeneral         ImpactCategory = "general"
)

// Investment validation errors
var (
	ErrEmptyInvestmentID     = validationError("investment ID cannot be empty")
	ErrEmptyInvestmentUserID = validationError("investment user ID cannot be empty")
	ErrEmptyAsset            = validationError("asset cannot be empty")
	ErrInvalidImpact         = validationError("invalid impact category")
	ErrNegativeCostBasis     = validationError("cost basis cannot be negative")
)

// Investment is a position held by a user.
type Investment struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Asset     string          `json:"asset"`
	Category  ImpactCategory  `json:"category"`
	Units     decimal.Decimal `json:"units"`
	CostBasis decimal.Decimal `json:"cost_basis"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewInvestment creates a validated investment.
func NewInvestment(userID uuid.UUID, asset string, category ImpactCategory, units, costBasis decimal.Decimal, currency string) (*Investment, error) {
	now := time.Now().UTC()
	if category == "" {
		category = ImpactGeneral
	}
	inv := &Investment{
		ID:        uuid.New(),
		UserID:    userID,
		Asset:     strings.ToUpper(strings.TrimSpace(asset)),
		Category:  category,
		Units:     units,
		CostBasis: costBasis,
		Currency:  strings.ToUpper(strings.TrimSpace(currency)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

// Validate checks if the Investment has valid data.
func (i *Investment) Validate() error {
	if i.ID == uuid.Nil {
		return ErrEmptyInvestmentID
	}
	if i.UserID == uuid.Nil {
		return ErrEmptyInvestmentUserID
	}
	if i.Asset == "" {
		return ErrEmptyAsset
	}
	switch i.Category {
	case ImpactRenewableEnergy, ImpactSocialHousing, ImpactMicrofinance, ImpactEducation, ImpactHealth, ImpactGeneral:
	default:
		return ErrInvalidImpact
	}
	if !i.Units.IsPositive() {
		return ErrInvalidAmount
	}
	if i.CostBasis.IsNegative() {
		return ErrNegativeCostBasis
	}
	if !validCurrency(i.Currency) {
		return ErrInvalidCurrency
	}
	return nil
}

// AverageCost is the cost basis per unit.
func (i *Investment) AverageCost() decimal.Decimal {
	if i.Units.IsZero() {
		return decimal.Zero
	}
	return i.CostBasis.DivRound(i.Units, 8)
}
