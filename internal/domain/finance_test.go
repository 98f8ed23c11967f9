package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNewWallet(t *testing.T) {
	userID := uuid.New()

	w, err := NewWallet(userID, " 0xabc ", "Ethereum", "")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", w.Address)
	assert.Equal(t, ChainEthereum, w.Chain)
	assert.Equal(t, WalletProviderExternal, w.Provider)

	_, err = NewWallet(userID, "addr", "bitcoin", WalletProviderPrivy)
	assert.ErrorIs(t, err, ErrInvalidChain)
	_, err = NewWallet(userID, "", ChainSolana, WalletProviderPrivy)
	assert.ErrorIs(t, err, ErrEmptyWalletAddress)
	_, err = NewWallet(uuid.Nil, "addr", ChainSolana, WalletProviderPrivy)
	assert.ErrorIs(t, err, ErrEmptyWalletUserID)
}

func TestChainFromProvider(t *testing.T) {
	assert.Equal(t, ChainSolana, ChainFromProvider("SOL"))
	assert.Equal(t, ChainPolygon, ChainFromProvider("matic"))
	assert.Equal(t, ChainEthereum, ChainFromProvider("eip155"))
}

func TestTransactionLifecycle(t *testing.T) {
	tx, err := NewTransaction(uuid.New(), TransactionDeposit, dec("25.00"), "eur", "top up")
	require.NoError(t, err)
	assert.Equal(t, TransactionPending, tx.Status)
	assert.Equal(t, "EUR", tx.Currency)

	assert.ErrorIs(t, tx.Settle(TransactionPending), ErrInvalidTransactionState)
	require.NoError(t, tx.Settle(TransactionCompleted))
	assert.Equal(t, TransactionCompleted, tx.Status)
	assert.ErrorIs(t, tx.Settle(TransactionFailed), ErrInvalidStatusTransition)
}

func TestNewTransaction_Invalid(t *testing.T) {
	userID := uuid.New()
	_, err := NewTransaction(userID, "gift", dec("1"), "EUR", "")
	assert.ErrorIs(t, err, ErrInvalidTransactionType)
	_, err = NewTransaction(userID, TransactionSwap, decimal.Zero, "EUR", "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = NewTransaction(userID, TransactionSwap, dec("1"), "€", "")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestInvestment(t *testing.T) {
	inv, err := NewInvestment(uuid.New(), " solar-fund ", "", dec("4"), dec("10"), "eur")
	require.NoError(t, err)
	assert.Equal(t, "SOLAR-FUND", inv.Asset)
	assert.Equal(t, ImpactGeneral, inv.Category)
	assert.Equal(t, "2.5", inv.AverageCost().String())

	_, err = NewInvestment(uuid.New(), "X", "weapons", dec("1"), dec("1"), "EUR")
	assert.ErrorIs(t, err, ErrInvalidImpact)
	_, err = NewInvestment(uuid.New(), "X", ImpactHealth, dec("1"), dec("-1"), "EUR")
	assert.ErrorIs(t, err, ErrNegativeCostBasis)
}

func TestSavingsGoal_DepositReportsReachedOnce(t *testing.T) {
	g, err := NewSavingsGoal(uuid.New(), "Bike", dec("100"), "EUR", nil)
	require.NoError(t, err)

	reached, err := g.Deposit(dec("60"))
	require.NoError(t, err)
	assert.False(t, reached)
	assert.Equal(t, "60", g.Progress().String())

	reached, err = g.Deposit(dec("40"))
	require.NoError(t, err)
	assert.True(t, reached)
	require.NotNil(t, g.ReachedAt)

	reached, err = g.Deposit(dec("10"))
	require.NoError(t, err)
	assert.False(t, reached, "goal is only reported reached once")
	assert.Equal(t, "100", g.Progress().String())

	_, err = g.Deposit(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewSavingsGoal_Invalid(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	_, err := NewSavingsGoal(uuid.New(), "Late", dec("10"), "EUR", &past)
	assert.ErrorIs(t, err, ErrDeadlineInPast)
	_, err = NewSavingsGoal(uuid.New(), " ", dec("10"), "EUR", nil)
	assert.ErrorIs(t, err, ErrEmptySavingsGoalName)
	_, err = NewSavingsGoal(uuid.New(), "Zero", decimal.Zero, "EUR", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRewardRedeem(t *testing.T) {
	r, err := NewReward(uuid.New(), GoalReachedPoints, RewardReasonGoalReached)
	require.NoError(t, err)
	require.NoError(t, r.Redeem())
	assert.NotNil(t, r.RedeemedAt)
	assert.ErrorIs(t, r.Redeem(), ErrRewardAlreadyRedeemed)

	_, err = NewReward(uuid.New(), 0, "x")
	assert.ErrorIs(t, err, ErrInvalidPoints)
}

func TestNotificationMarkRead(t *testing.T) {
	n, err := NewNotification(uuid.New(), NotificationSavings, "Goal reached", "")
	require.NoError(t, err)
	assert.Nil(t, n.ReadAt)

	n.MarkRead()
	first := *n.ReadAt
	n.MarkRead()
	assert.Equal(t, first, *n.ReadAt)

	_, err = NewNotification(uuid.New(), NotificationKYC, "", "")
	assert.ErrorIs(t, err, ErrEmptyNotificationTitle)
}

func TestChatMessage(t *testing.T) {
	m, err := NewChatMessage(uuid.New(), ChatRoleUser, "  what is my balance? ")
	require.NoError(t, err)
	assert.Equal(t, "what is my balance?", m.Content)

	_, err = NewChatMessage(uuid.New(), "system", "hi")
	assert.ErrorIs(t, err, ErrInvalidChatRole)
	_, err = NewChatMessage(uuid.New(), ChatRoleUser, "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)
}
