package settlement

import "errors"

// Precondition failures. Each is distinct so callers can tell which check
// failed; wrap them with %w and test with errors.Is.
var (
	ErrSessionNotFound = errors.New("settlement session not found")
	ErrNotMember       = errors.New("user is not a member of the group")
	ErrInvalidStatus   = errors.New("session is not in the required status")
	ErrNotPayer        = errors.New("user does not send any of the session's transfers")
	ErrNotRecipient    = errors.New("user does not receive any of the session's transfers")
	ErrNotReported     = errors.New("payment has not been reported yet")
	ErrEntryNotFound   = errors.New("settlement entry not found")
	ErrInvalidPeriod   = errors.New("invalid settlement period")
	ErrNothingToSettle = errors.New("session has no filled entries")
	ErrSplitMismatch   = errors.New("splits do not add up to the amount")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentSettled  = errors.New("payment belongs to a settlement")
	ErrDuplicateSplit  = errors.New("member has more than one share")
)

// CodeInternal is returned by Code for errors that are not preconditions.
const CodeInternal = -100

var codes = []struct {
	err  error
	code int
}{
	{ErrSessionNotFound, -1},
	{ErrNotMember, -2},
	{ErrInvalidStatus, -3},
	{ErrNotPayer, -4},
	{ErrNotRecipient, -5},
	{ErrNotReported, -6},
	{ErrEntryNotFound, -7},
	{ErrInvalidPeriod, -8},
	{ErrNothingToSettle, -9},
	{ErrSplitMismatch, -10},
	{ErrInvalidAmount, -11},
	{ErrPaymentNotFound, -12},
	{ErrPaymentSettled, -13},
	{ErrDuplicateSplit, -14},
}

// Code maps err to a stable negative integer: 0 for nil, -1 through -14 for
// the precondition errors above, CodeInternal for anything else.
func Code(err error) int {
	if err == nil {
		return 0
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}
