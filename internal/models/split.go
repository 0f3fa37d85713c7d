package models

import "github.com/shopspring/decimal"

// SplitType says how a charge is divided among members.
type SplitType string

const (
	// SplitTypeEqual divides the amount equally among the current members.
	SplitTypeEqual SplitType = "equal"
	// SplitTypeCustom uses explicit per-member amounts.
	SplitTypeCustom SplitType = "custom"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	return t == SplitTypeEqual || t == SplitTypeCustom
}

// PaymentSplit is one member's share of a payment.
// When a payment carries splits, their amounts sum to the payment amount.
type PaymentSplit struct {
	// UserID is the member who owes this share.
	UserID string

	// Amount is the share in whole currency units (>= 0).
	Amount int64
}

// RuleSplit is one line of a recurring rule's custom split template.
// Either Amount or Percentage is set; Amount wins when both are.
type RuleSplit struct {
	// UserID is the member who owes this share.
	UserID string

	// Amount is an explicit share, or nil to derive it from Percentage.
	Amount *int64

	// Percentage of the rule's default amount (e.g. 33.33), or nil.
	Percentage *decimal.Decimal
}

// EntrySplit is one member's share of a settlement entry.
// Same semantics as PaymentSplit.
type EntrySplit struct {
	// UserID is the member who owes this share.
	UserID string

	// Amount is the share in whole currency units (>= 0).
	Amount int64
}

// SumPaymentSplits returns the total of all split amounts.
func SumPaymentSplits(splits []PaymentSplit) int64 {
	var total int64
	for _, s := range splits {
		total += s.Amount
	}
	return total
}

// SumEntrySplits returns the total of all split amounts.
func SumEntrySplits(splits []EntrySplit) int64 {
	var total int64
	for _, s := range splits {
		total += s.Amount
	}
	return total
}
