package service

import (
	"time"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPISession(s *models.SettlementSession) *api.Session {
	out := &api.Session{
		ID:                s.ID,
		GroupID:           s.GroupID,
		PeriodStart:       models.FormatDate(s.PeriodStart),
		PeriodEnd:         models.FormatDate(s.PeriodEnd),
		Status:            string(s.Status),
		CreatedBy:         s.CreatedBy,
		CreatedAt:         s.CreatedAt.Unix(),
		ConfirmedBy:       deref(s.ConfirmedBy),
		ConfirmedAt:       unix(s.ConfirmedAt),
		NetTransfers:      toAPITransfers(s.NetTransfers),
		IsZeroSettlement:  s.IsZeroSettlement,
		PaymentReportedBy: deref(s.PaymentReportedBy),
		PaymentReportedAt: unix(s.PaymentReportedAt),
		SettledBy:         deref(s.SettledBy),
		SettledAt:         unix(s.SettledAt),
	}
	return out
}

func toAPITransfers(transfers []models.Transfer) []api.Transfer {
	out := make([]api.Transfer, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, api.Transfer{
			FromID:   t.FromID,
			FromName: t.FromName,
			ToID:     t.ToID,
			ToName:   t.ToName,
			Amount:   t.Amount,
		})
	}
	return out
}

func toAPIEntry(e *models.SettlementEntry) *api.Entry {
	out := &api.Entry{
		ID:              e.ID,
		SessionID:       e.SessionID,
		RuleID:          deref(e.RuleID),
		SourcePaymentID: deref(e.SourcePaymentID),
		Description:     e.Description,
		CategoryID:      deref(e.CategoryID),
		ExpectedAmount:  e.ExpectedAmount,
		ActualAmount:    e.ActualAmount,
		PayerID:         e.PayerID,
		PaymentDate:     models.FormatDate(e.PaymentDate),
		Status:          string(e.Status),
		SplitType:       string(e.SplitType),
		EntryType:       string(e.EntryType),
		FilledBy:        deref(e.FilledBy),
		FilledAt:        unix(e.FilledAt),
		Splits:          make([]api.Split, 0, len(e.Splits)),
	}
	for _, s := range e.Splits {
		out.Splits = append(out.Splits, api.Split{UserID: s.UserID, Amount: s.Amount})
	}
	return out
}

func toAPIPayment(p *models.Payment) *api.Payment {
	out := &api.Payment{
		ID:           p.ID,
		GroupID:      p.GroupID,
		PayerID:      p.PayerID,
		Amount:       p.Amount,
		Description:  p.Description,
		CategoryID:   deref(p.CategoryID),
		PaymentDate:  models.FormatDate(p.PaymentDate),
		SettlementID: deref(p.SettlementID),
		Splits:       make([]api.Split, 0, len(p.Splits)),
		CreatedAt:    p.CreatedAt,
	}
	for _, s := range p.Splits {
		out.Splits = append(out.Splits, api.Split{UserID: s.UserID, Amount: s.Amount})
	}
	return out
}

func toAPIBalances(balances []calculator.Balance) []api.Balance {
	out := make([]api.Balance, 0, len(balances))
	for _, b := range balances {
		out = append(out, api.Balance{
			UserID:    b.UserID,
			Name:      b.Name,
			TotalPaid: b.TotalPaid,
			TotalOwed: b.TotalOwed,
			Balance:   b.Balance,
		})
	}
	return out
}

func toAPIShares(records []calculator.SplitRecord) []api.Split {
	out := make([]api.Split, 0, len(records))
	for _, r := range records {
		out = append(out, api.Split{UserID: r.UserID, Amount: r.Amount})
	}
	return out
}

func fromAPISplits(splits []api.Split) []models.EntrySplit {
	var out []models.EntrySplit
	for _, s := range splits {
		out = append(out, models.EntrySplit{UserID: s.UserID, Amount: s.Amount})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func unix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}
