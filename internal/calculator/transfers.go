package calculator

import (
	"sort"

	"github.com/mmynk/settleup/internal/models"
)

// SettlementPlan is the output of SuggestSettlements.
type SettlementPlan struct {
	Transfers []models.Transfer

	// UnsettledRemainder is the creditor amount no debtor could cover. With
	// CalculateBalances this is the floor remainder; with
	// CalculateSettlementBalances it is always 0.
	UnsettledRemainder int64
}

// party is a worklist item: a debtor's debt or a creditor's credit, always positive.
type party struct {
	id     string
	name   string
	amount int64
}

// SuggestSettlements reduces net balances to debtor -> creditor transfers by
// greedily matching the largest debt against the largest credit.
//
// The worklists are owned copies; the caller's balances are never modified.
// Amounts are whole units so every settle step is exact. Each step retires at
// least one party, so at most debtors+creditors-1 transfers are produced.
func SuggestSettlements(balances []Balance) SettlementPlan {
	var debtors, creditors []party
	for _, b := range balances {
		switch {
		case b.Balance < 0:
			debtors = append(debtors, party{id: b.UserID, name: b.Name, amount: -b.Balance})
		case b.Balance > 0:
			creditors = append(creditors, party{id: b.UserID, name: b.Name, amount: b.Balance})
		}
	}
	sortParties(debtors)
	sortParties(creditors)

	plan := SettlementPlan{Transfers: []models.Transfer{}}

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := min(debtor.amount, creditor.amount)
		if amount > 0 {
			plan.Transfers = append(plan.Transfers, models.Transfer{
				FromID:   debtor.id,
				FromName: debtor.name,
				ToID:     creditor.id,
				ToName:   creditor.name,
				Amount:   amount,
			})
		}

		debtor.amount -= amount
		creditor.amount -= amount

		if debtor.amount == 0 {
			i++
		}
		if creditor.amount == 0 {
			j++
		}
	}

	for ; j < len(creditors); j++ {
		plan.UnsettledRemainder += creditors[j].amount
	}

	return plan
}

// sortParties orders by amount descending, then ID for a stable result.
func sortParties(parties []party) {
	sort.Slice(parties, func(a, b int) bool {
		if parties[a].amount != parties[b].amount {
			return parties[a].amount > parties[b].amount
		}
		return parties[a].id < parties[b].id
	})
}
