package models

import "time"

// EntryStatus is the state of one checklist line.
type EntryStatus string

const (
	// EntryStatusPending entries await a user decision and may be rewritten by refresh.
	EntryStatusPending EntryStatus = "pending"
	// EntryStatusFilled entries carry an actual amount and count at confirmation.
	EntryStatusFilled EntryStatus = "filled"
	// EntryStatusSkipped entries were explicitly dismissed; ActualAmount is nil.
	EntryStatusSkipped EntryStatus = "skipped"
)

// EntryType records where an entry came from.
type EntryType string

const (
	// EntryTypeRule entries were generated from a recurring rule occurrence.
	EntryTypeRule EntryType = "rule"
	// EntryTypeManual entries were added by hand to the session.
	EntryTypeManual EntryType = "manual"
	// EntryTypeExisting entries mirror an unsettled payment.
	EntryTypeExisting EntryType = "existing"
)

// SettlementEntry is one line of a session's checklist of expected charges.
//
// Filled and skipped entries are user decisions: reconciliation never
// rewrites or removes them.
type SettlementEntry struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// SessionID is the owning session. Entries never move between sessions.
	SessionID string

	// RuleID is set for rule-sourced entries.
	RuleID *string

	// SourcePaymentID is set for entries mirroring an existing payment.
	SourcePaymentID *string

	Description string
	CategoryID  *string

	// ExpectedAmount is nil for variable-amount rules.
	ExpectedAmount *int64

	// ActualAmount is nil until filled, and always nil when skipped.
	ActualAmount *int64

	// PayerID is the member who paid (or is expected to pay) this charge.
	PayerID string

	// PaymentDate is the occurrence date or the source payment's date.
	PaymentDate time.Time

	Status    EntryStatus
	SplitType SplitType
	EntryType EntryType

	FilledBy *string
	FilledAt *time.Time

	// Splits are the explicit shares; empty means equal division.
	Splits []EntrySplit
}

// RuleKey identifies a rule occurrence as "ruleID|2006-01-02".
// It is empty for entries that are not rule-sourced.
func (e *SettlementEntry) RuleKey() string {
	if e.RuleID == nil {
		return ""
	}
	return RuleOccurrenceKey(*e.RuleID, e.PaymentDate)
}

// RuleOccurrenceKey builds the reconciliation key of a rule occurrence.
func RuleOccurrenceKey(ruleID string, date time.Time) string {
	return ruleID + "|" + FormatDate(date)
}
