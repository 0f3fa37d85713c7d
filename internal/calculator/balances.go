package calculator

import (
	"sort"

	"github.com/mmynk/settleup/internal/models"
)

// Share is one member's explicit part of a charge.
type Share struct {
	UserID string
	Amount int64
}

// PaymentForBalance represents a payment (or a filled settlement entry) with the
// minimal information needed for balance calculations.
type PaymentForBalance struct {
	PayerID string
	Amount  int64
	Splits  []Share // empty = divide equally among members
}

// Balance represents the balance information for one group member.
type Balance struct {
	UserID    string
	Name      string
	TotalPaid int64
	TotalOwed int64
	Balance   int64 // Positive = owed money, Negative = owes money
}

// CalculateBalances aggregates payments into per-member balances using
// aggregate-then-floor: all equal-split payments are summed first and the
// per-person share is floored once, so many small payments never drift by a
// unit each.
//
// Algorithm:
// - sharedTotal = sum of amounts of payments without splits
// - perPersonOwed = floor(sharedTotal / len(members)), owed by every member
// - payments with splits add each share to that member's owed; any unassigned
//   rest is owed by the payer
// - balance = totalPaid - totalOwed
//
// Balances sum to sharedTotal - perPersonOwed*len(members), the floor
// remainder, not to zero. The result follows roster order; payers or split
// members outside the roster are appended ordered by ID.
func CalculateBalances(members []models.Member, payments []PaymentForBalance) []Balance {
	ledger := newLedger(members)

	var sharedTotal int64
	for _, p := range payments {
		ledger.get(p.PayerID).TotalPaid += p.Amount

		if len(p.Splits) == 0 {
			sharedTotal += p.Amount
			continue
		}
		ledger.owe(p)
	}

	if len(members) > 0 {
		perPersonOwed := sharedTotal / int64(len(members))
		for _, m := range members {
			ledger.get(m.UserID).TotalOwed += perPersonOwed
		}
	}

	return ledger.result()
}

// CalculateSettlementBalances computes balances for a settlement from its
// filled entries.
//
// Each entry is settled on its own: explicit shares are owed as given; an
// entry without shares is divided floor(amount / n) per member and the
// residual is owed by the payer. Any amount not covered by explicit shares is
// also owed by the payer. Balances therefore always sum to zero, which is what
// lets confirmation detect a zero settlement.
func CalculateSettlementBalances(members []models.Member, entries []PaymentForBalance) []Balance {
	ledger := newLedger(members)

	for _, e := range entries {
		ledger.get(e.PayerID).TotalPaid += e.Amount

		if len(e.Splits) > 0 {
			ledger.owe(e)
			continue
		}

		if len(members) == 0 {
			ledger.get(e.PayerID).TotalOwed += e.Amount
			continue
		}
		share := e.Amount / int64(len(members))
		for _, m := range members {
			ledger.get(m.UserID).TotalOwed += share
		}
		ledger.get(e.PayerID).TotalOwed += e.Amount - share*int64(len(members))
	}

	return ledger.result()
}

// ledger accumulates paid/owed totals keyed by user ID.
type ledger struct {
	balances map[string]*Balance
	roster   []string
	extras   []string
}

func newLedger(members []models.Member) *ledger {
	l := &ledger{balances: make(map[string]*Balance, len(members))}
	for _, m := range members {
		if _, exists := l.balances[m.UserID]; exists {
			continue
		}
		l.balances[m.UserID] = &Balance{UserID: m.UserID, Name: m.DisplayName}
		l.roster = append(l.roster, m.UserID)
	}
	return l
}

func (l *ledger) get(userID string) *Balance {
	if bal, exists := l.balances[userID]; exists {
		return bal
	}
	bal := &Balance{UserID: userID, Name: userID}
	l.balances[userID] = bal
	l.extras = append(l.extras, userID)
	return bal
}

// owe records explicit shares and lands the unassigned rest on the payer.
func (l *ledger) owe(p PaymentForBalance) {
	var assigned int64
	for _, s := range p.Splits {
		l.get(s.UserID).TotalOwed += s.Amount
		assigned += s.Amount
	}
	if rest := p.Amount - assigned; rest > 0 {
		l.get(p.PayerID).TotalOwed += rest
	}
}

func (l *ledger) result() []Balance {
	sort.Strings(l.extras)

	out := make([]Balance, 0, len(l.roster)+len(l.extras))
	for _, id := range append(append([]string{}, l.roster...), l.extras...) {
		bal := *l.balances[id]
		bal.Balance = bal.TotalPaid - bal.TotalOwed
		out = append(out, bal)
	}
	return out
}

// SumBalances returns the sum of all net balances.
func SumBalances(balances []Balance) int64 {
	var sum int64
	for _, b := range balances {
		sum += b.Balance
	}
	return sum
}
