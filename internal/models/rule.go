package models

import "time"

// RecurringRule is a template for a periodic charge such as rent or internet.
//
// A rule fires in month M when (M - anchor month) is a non-negative multiple of
// IntervalMonths, where the anchor is CreatedAt. The fired day is DayOfMonth
// clamped to the length of M, so 31 means "last day of the month".
type RecurringRule struct {
	// ID is the unique identifier for the rule (UUID format).
	ID string

	// GroupID is the group this rule belongs to.
	GroupID string

	// Description is copied onto every generated entry.
	Description string

	// CategoryID optionally references a category managed elsewhere.
	CategoryID *string

	// DefaultAmount is the expected charge; nil when IsVariable.
	DefaultAmount *int64

	// IsVariable marks charges whose amount is only known when billed.
	IsVariable bool

	// DayOfMonth is 1-31.
	DayOfMonth int

	// IntervalMonths is the period in months, at least 1.
	IntervalMonths int

	// DefaultPayerID is the member who usually pays this charge.
	DefaultPayerID string

	// SplitType selects equal division or the custom Splits template.
	SplitType SplitType

	// IsActive rules are the only ones considered when generating entries.
	IsActive bool

	// StartDate is the first day the rule may fire.
	StartDate time.Time

	// EndDate is the last day the rule may fire, or nil for open-ended rules.
	EndDate *time.Time

	// CreatedAt is the recurrence anchor.
	CreatedAt time.Time

	// Splits is the ordered custom split template, used only when SplitType is custom.
	Splits []RuleSplit
}
