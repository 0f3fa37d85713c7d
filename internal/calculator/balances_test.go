package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/models"
)

var threeMembers = []models.Member{
	{UserID: "alice", DisplayName: "Alice"},
	{UserID: "bob", DisplayName: "Bob"},
	{UserID: "carol", DisplayName: "Carol"},
}

func balanceOf(t *testing.T, balances []Balance, userID string) Balance {
	t.Helper()
	for _, b := range balances {
		if b.UserID == userID {
			return b
		}
	}
	t.Fatalf("no balance for %s", userID)
	return Balance{}
}

func TestCalculateBalances_AggregateThenFloor(t *testing.T) {
	payments := []PaymentForBalance{
		{PayerID: "alice", Amount: 1000},
		{PayerID: "bob", Amount: 1000},
		{PayerID: "carol", Amount: 1000},
	}

	balances := CalculateBalances(threeMembers, payments)
	require.Len(t, balances, 3)
	for _, b := range balances {
		assert.Equal(t, int64(1000), b.TotalPaid, b.UserID)
		assert.Equal(t, int64(1000), b.TotalOwed, b.UserID)
		assert.Zero(t, b.Balance, b.UserID)
	}
}

func TestCalculateBalances_SinglePaymentLeavesFloorRemainder(t *testing.T) {
	balances := CalculateBalances(threeMembers, []PaymentForBalance{{PayerID: "alice", Amount: 1000}})

	for _, b := range balances {
		assert.Equal(t, int64(333), b.TotalOwed, b.UserID)
	}
	assert.Equal(t, int64(667), balanceOf(t, balances, "alice").Balance)
	assert.Equal(t, int64(-333), balanceOf(t, balances, "bob").Balance)
	assert.Equal(t, int64(-333), balanceOf(t, balances, "carol").Balance)
	assert.Equal(t, int64(1), SumBalances(balances))
}

func TestCalculateBalances_OrderInvariant(t *testing.T) {
	payments := []PaymentForBalance{
		{PayerID: "alice", Amount: 1234},
		{PayerID: "bob", Amount: 50},
		{PayerID: "carol", Amount: 3000, Splits: []Share{{UserID: "alice", Amount: 1000}, {UserID: "bob", Amount: 2000}}},
		{PayerID: "alice", Amount: 7},
	}
	reversed := make([]PaymentForBalance, len(payments))
	for i, p := range payments {
		reversed[len(payments)-1-i] = p
	}

	assert.Equal(t, CalculateBalances(threeMembers, payments), CalculateBalances(threeMembers, reversed))
}

func TestCalculateBalances_ExplicitSplits(t *testing.T) {
	payments := []PaymentForBalance{
		{PayerID: "alice", Amount: 3000, Splits: []Share{{UserID: "alice", Amount: 1500}, {UserID: "bob", Amount: 1500}}},
		// unassigned rest of 100 stays with the payer
		{PayerID: "bob", Amount: 600, Splits: []Share{{UserID: "carol", Amount: 500}}},
	}

	balances := CalculateBalances(threeMembers, payments)
	assert.Equal(t, int64(1500), balanceOf(t, balances, "alice").Balance)
	assert.Equal(t, int64(600-1500-100), balanceOf(t, balances, "bob").Balance)
	assert.Equal(t, int64(-500), balanceOf(t, balances, "carol").Balance)
	assert.Zero(t, SumBalances(balances))
}

func TestCalculateBalances_UnknownPayerAppended(t *testing.T) {
	members := []models.Member{{UserID: "alice", DisplayName: "Alice"}}
	balances := CalculateBalances(members, []PaymentForBalance{{PayerID: "zed", Amount: 100}})

	require.Len(t, balances, 2)
	assert.Equal(t, "alice", balances[0].UserID)
	assert.Equal(t, "zed", balances[1].UserID)
	assert.Equal(t, int64(100), balances[1].Balance)
	assert.Equal(t, int64(-100), balances[0].Balance)
}

func TestCalculateBalances_NoMembersNoPayments(t *testing.T) {
	assert.Empty(t, CalculateBalances(nil, nil))

	balances := CalculateBalances(threeMembers, nil)
	require.Len(t, balances, 3)
	assert.Equal(t, "Alice", balances[0].Name)
	assert.Zero(t, SumBalances(balances))
}

func TestCalculateSettlementBalances(t *testing.T) {
	members := threeMembers[:2]

	t.Run("explicit splits", func(t *testing.T) {
		entries := []PaymentForBalance{
			{PayerID: "alice", Amount: 3000, Splits: []Share{{UserID: "alice", Amount: 1500}, {UserID: "bob", Amount: 1500}}},
			{PayerID: "bob", Amount: 1000, Splits: []Share{{UserID: "alice", Amount: 500}, {UserID: "bob", Amount: 500}}},
		}

		balances := CalculateSettlementBalances(members, entries)
		assert.Equal(t, int64(1000), balanceOf(t, balances, "alice").Balance)
		assert.Equal(t, int64(-1000), balanceOf(t, balances, "bob").Balance)
	})

	t.Run("no-split residual lands on payer", func(t *testing.T) {
		balances := CalculateSettlementBalances(threeMembers, []PaymentForBalance{{PayerID: "alice", Amount: 1000}})

		alice := balanceOf(t, balances, "alice")
		assert.Equal(t, int64(334), alice.TotalOwed)
		assert.Equal(t, int64(666), alice.Balance)
		assert.Equal(t, int64(-333), balanceOf(t, balances, "bob").Balance)
		assert.Zero(t, SumBalances(balances))
	})

	t.Run("even payments net to zero", func(t *testing.T) {
		entries := []PaymentForBalance{
			{PayerID: "alice", Amount: 2000},
			{PayerID: "bob", Amount: 2000},
		}
		for _, b := range CalculateSettlementBalances(members, entries) {
			assert.Zero(t, b.Balance, b.UserID)
		}
	})

	t.Run("no members keeps everything on payer", func(t *testing.T) {
		balances := CalculateSettlementBalances(nil, []PaymentForBalance{{PayerID: "alice", Amount: 500}})
		require.Len(t, balances, 1)
		assert.Zero(t, balances[0].Balance)
	})
}
