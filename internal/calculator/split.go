package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrSplitTotalMismatch is returned when explicit splits do not add up to the payment amount.
var ErrSplitTotalMismatch = errors.New("splits total does not match payment amount")

// SplitRecord is one member's share of a single payment.
type SplitRecord struct {
	PaymentID string
	UserID    string
	Amount    int64
}

// EqualSplit divides total equally among memberIDs, flooring each share.
//
// The remainder (total mod n) is not redistributed; balance aggregation
// absorbs it. A non-positive total gives every member 0, and no members
// gives an empty result.
func EqualSplit(paymentID string, total int64, memberIDs []string) []SplitRecord {
	if len(memberIDs) == 0 {
		return []SplitRecord{}
	}

	var share int64
	if total > 0 {
		share = total / int64(len(memberIDs))
	}

	splits := make([]SplitRecord, len(memberIDs))
	for i, id := range memberIDs {
		splits[i] = SplitRecord{PaymentID: paymentID, UserID: id, Amount: share}
	}
	return splits
}

// CustomSplits turns raw user-entered amounts into split records.
//
// Each value is parsed as a base-10 integer. Unparseable or negative values
// become 0, and empty strings are left out entirely. No sum check is done
// here; use ValidateSplitTotal before persisting. Records are ordered by user ID.
func CustomSplits(paymentID string, raw map[string]string) []SplitRecord {
	userIDs := make([]string, 0, len(raw))
	for id := range raw {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	splits := make([]SplitRecord, 0, len(raw))
	for _, id := range userIDs {
		value := strings.TrimSpace(raw[id])
		if value == "" {
			continue
		}
		splits = append(splits, SplitRecord{PaymentID: paymentID, UserID: id, Amount: parseAmount(value)})
	}
	return splits
}

// ProxySplit models "I paid for you": the beneficiary owes the whole total and
// the payer owes nothing, so a single record is emitted.
// A missing payer or a beneficiary outside memberIDs yields an empty result.
func ProxySplit(paymentID string, total int64, payerID, beneficiaryID string, memberIDs []string) []SplitRecord {
	if payerID == "" || !contains(memberIDs, beneficiaryID) {
		return []SplitRecord{}
	}
	if total < 0 {
		total = 0
	}
	return []SplitRecord{{PaymentID: paymentID, UserID: beneficiaryID, Amount: total}}
}

// ValidateSplitTotal checks that splits add up to exactly total.
func ValidateSplitTotal(splits []SplitRecord, total int64) error {
	var sum int64
	for _, s := range splits {
		if s.Amount < 0 {
			return fmt.Errorf("negative split for %s: %d", s.UserID, s.Amount)
		}
		sum += s.Amount
	}
	if sum != total {
		return fmt.Errorf("%w: splits total %d, payment amount %d", ErrSplitTotalMismatch, sum, total)
	}
	return nil
}

// PercentageShare returns floor(amount × percentage / 100) computed exactly.
func PercentageShare(amount int64, percentage decimal.Decimal) int64 {
	share := decimal.NewFromInt(amount).Mul(percentage).Shift(-2).Floor()
	if share.IsNegative() {
		return 0
	}
	return share.IntPart()
}

func parseAmount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
