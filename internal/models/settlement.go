package models

import "time"

// SessionStatus is the lifecycle state of a settlement session.
//
//	draft --confirm--> pending_payment --report_payment--> (reported) --confirm_receipt--> settled
//	draft --confirm, no transfers--> settled
type SessionStatus string

const (
	// SessionStatusDraft sessions have an editable entry checklist.
	SessionStatusDraft SessionStatus = "draft"
	// SessionStatusPendingPayment sessions wait for the computed transfers to happen.
	SessionStatusPendingPayment SessionStatus = "pending_payment"
	// SessionStatusSettled is terminal.
	SessionStatusSettled SessionStatus = "settled"
)

// SettlementSession represents a bounded-period settlement of a group's expenses.
type SettlementSession struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// GroupID is the group being settled.
	GroupID string

	// PeriodStart and PeriodEnd bound the period, both inclusive.
	PeriodStart time.Time
	PeriodEnd   time.Time

	// Status is the lifecycle state.
	Status SessionStatus

	// CreatedBy is the member who opened the session.
	CreatedBy string
	CreatedAt time.Time

	// ConfirmedBy/At are set when the draft is confirmed, including the
	// zero-settlement fast path.
	ConfirmedBy *string
	ConfirmedAt *time.Time

	// NetTransfers are the transfers computed at confirmation. Nil while draft.
	NetTransfers []Transfer

	// IsZeroSettlement is true when confirmation produced no transfers.
	IsZeroSettlement bool

	// PaymentReportedBy/At record the payer's attestation that transfers were sent.
	PaymentReportedBy *string
	PaymentReportedAt *time.Time

	// SettledBy/At are set on the transition to settled.
	SettledBy *string
	SettledAt *time.Time
}

// IsReported reports whether a payer has attested the transfers.
func (s *SettlementSession) IsReported() bool {
	return s.PaymentReportedAt != nil
}

// HasSender reports whether userID is the sender of any net transfer.
func (s *SettlementSession) HasSender(userID string) bool {
	for _, t := range s.NetTransfers {
		if t.FromID == userID {
			return true
		}
	}
	return false
}

// HasRecipient reports whether userID receives any net transfer.
func (s *SettlementSession) HasRecipient(userID string) bool {
	for _, t := range s.NetTransfers {
		if t.ToID == userID {
			return true
		}
	}
	return false
}

// Transfer is a single payment instruction from a debtor to a creditor.
// Its JSON form is the persisted net_transfers element and must not change.
type Transfer struct {
	FromID   string `json:"from_id"`
	FromName string `json:"from_name"`
	ToID     string `json:"to_id"`
	ToName   string `json:"to_name"`
	Amount   int64  `json:"amount"`
}
