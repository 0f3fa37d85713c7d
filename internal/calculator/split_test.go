package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualSplit(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		memberIDs []string
		want      []int64
	}{
		{name: "divides evenly", total: 3000, memberIDs: []string{"alice", "bob", "carol"}, want: []int64{1000, 1000, 1000}},
		{name: "floors each share", total: 1000, memberIDs: []string{"alice", "bob", "carol"}, want: []int64{333, 333, 333}},
		{name: "single member gets everything", total: 999, memberIDs: []string{"alice"}, want: []int64{999}},
		{name: "zero total", total: 0, memberIDs: []string{"alice", "bob"}, want: []int64{0, 0}},
		{name: "negative total clamps to zero", total: -500, memberIDs: []string{"alice", "bob"}, want: []int64{0, 0}},
		{name: "no members", total: 1000, memberIDs: nil, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := EqualSplit("p1", tt.total, tt.memberIDs)
			require.Len(t, splits, len(tt.want))
			for i, s := range splits {
				assert.Equal(t, "p1", s.PaymentID)
				assert.Equal(t, tt.memberIDs[i], s.UserID)
				assert.Equal(t, tt.want[i], s.Amount)
			}
		})
	}
}

func TestEqualSplit_RemainderBound(t *testing.T) {
	members := []string{"a", "b", "c", "d", "e", "f", "g"}
	for n := 1; n <= len(members); n++ {
		for _, total := range []int64{0, 1, 7, 100, 1001, 99999} {
			splits := EqualSplit("p", total, members[:n])

			var sum int64
			for _, s := range splits {
				sum += s.Amount
			}
			assert.LessOrEqual(t, sum, total, "n=%d total=%d", n, total)
			assert.Less(t, total-sum, int64(n), "n=%d total=%d", n, total)
		}
	}
}

func TestCustomSplits(t *testing.T) {
	t.Run("parses amounts in user order", func(t *testing.T) {
		splits := CustomSplits("p1", map[string]string{"u2": "400", "u1": "600"})
		assert.Equal(t, []SplitRecord{
			{PaymentID: "p1", UserID: "u1", Amount: 600},
			{PaymentID: "p1", UserID: "u2", Amount: 400},
		}, splits)
	})

	t.Run("empty strings are omitted", func(t *testing.T) {
		splits := CustomSplits("p1", map[string]string{"u1": "1000", "u2": "", "u3": "   "})
		require.Len(t, splits, 1)
		assert.Equal(t, "u1", splits[0].UserID)
	})

	t.Run("invalid values clamp to zero", func(t *testing.T) {
		splits := CustomSplits("p1", map[string]string{"u1": "-50", "u2": "abc", "u3": "12.5"})
		require.Len(t, splits, 3)
		for _, s := range splits {
			assert.Zero(t, s.Amount, s.UserID)
		}
	})

	t.Run("no sum check", func(t *testing.T) {
		splits := CustomSplits("p1", map[string]string{"u1": "1", "u2": "2"})
		assert.Len(t, splits, 2)
	})
}

func TestProxySplit(t *testing.T) {
	members := []string{"alice", "bob"}

	splits := ProxySplit("p1", 1200, "alice", "bob", members)
	assert.Equal(t, []SplitRecord{{PaymentID: "p1", UserID: "bob", Amount: 1200}}, splits)

	assert.Empty(t, ProxySplit("p1", 1200, "alice", "mallory", members))
	assert.Empty(t, ProxySplit("p1", 1200, "", "bob", members))

	negative := ProxySplit("p1", -1, "alice", "bob", members)
	require.Len(t, negative, 1)
	assert.Zero(t, negative[0].Amount)
}

func TestValidateSplitTotal(t *testing.T) {
	ok := []SplitRecord{{UserID: "u1", Amount: 600}, {UserID: "u2", Amount: 400}}
	require.NoError(t, ValidateSplitTotal(ok, 1000))

	err := ValidateSplitTotal(ok, 1200)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSplitTotalMismatch))
	assert.Contains(t, err.Error(), "splits total 1000, payment amount 1200")

	assert.Error(t, ValidateSplitTotal([]SplitRecord{{UserID: "u1", Amount: -1}, {UserID: "u2", Amount: 1001}}, 1000))
}

func TestPercentageShare(t *testing.T) {
	tests := []struct {
		amount int64
		pct    string
		want   int64
	}{
		{amount: 10000, pct: "50", want: 5000},
		{amount: 10000, pct: "33.33", want: 3333},
		{amount: 1000, pct: "33.333", want: 333},
		{amount: 999, pct: "10", want: 99},
		{amount: 1000, pct: "0", want: 0},
		{amount: 1000, pct: "-5", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.pct, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentageShare(tt.amount, decimal.RequireFromString(tt.pct)))
		})
	}
}
