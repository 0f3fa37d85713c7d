// Package models defines the core domain models for settleup.
//
// # Models
//
// Ledger data, created by the surrounding application:
//   - User / Member: identity and display name of a group member
//   - Group: a household sharing expenses
//   - Payment: one expense, optionally with explicit per-member splits
//   - RecurringRule: template for a periodic charge (rent, utilities)
//
// Settlement data, owned by the settlement engine:
//   - SettlementSession: a bounded-period settlement in progress
//   - SettlementEntry: one checklist line of a session
//   - Transfer: a single debtor to creditor payment instruction
//
// # Money
//
// All amounts are int64 whole currency units (e.g. yen). There are no
// fractional subunits anywhere in the model.
//
// # Dates
//
// Calendar dates (payment dates, period bounds, rule start/end) are
// time.Time values at midnight UTC and are persisted as "2006-01-02" strings.
// Use Date and ParseDate to build and read them.
//
// # Relationships
//
// Models reference each other by ID strings, never by pointer.
package models

import "time"

// DateLayout is the persisted representation of calendar dates.
const DateLayout = "2006-01-02"

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "2006-01-02" string into a midnight UTC time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t as "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
