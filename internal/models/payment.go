package models

import "time"

// Payment represents a single expense paid by one member on behalf of the group.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// PayerID is the member who paid.
	PayerID string

	// Amount is the total paid, a positive whole number of currency units.
	Amount int64

	// Description is a short free-text label ("Electricity", "Groceries").
	Description string

	// CategoryID optionally references a category managed elsewhere.
	CategoryID *string

	// PaymentDate is the calendar day the expense happened.
	PaymentDate time.Time

	// SettlementID is set exactly once, when a settlement session consuming this
	// payment is confirmed. A payment with a SettlementID is immutable.
	SettlementID *string

	// Splits are the explicit per-member shares. Empty means "divide equally
	// among the current group members".
	Splits []PaymentSplit

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64
}

// IsSettled reports whether the payment has been consumed by a settlement.
func (p *Payment) IsSettled() bool {
	return p.SettlementID != nil
}

// SplitType infers the split type from the presence of explicit splits.
func (p *Payment) SplitType() SplitType {
	if len(p.Splits) > 0 {
		return SplitTypeCustom
	}
	return SplitTypeEqual
}
