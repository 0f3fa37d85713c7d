package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/observability"
)

// CreateSession opens a draft session for the inclusive period [start, end]
// and generates its entries in the same transaction. It returns the session
// and the number of entries created.
func (e *Engine) CreateSession(ctx context.Context, groupID, userID string, start, end time.Time) (*models.SettlementSession, int, error) {
	start = models.Date(start.Date())
	end = models.Date(end.Date())
	if start.After(end) {
		return nil, 0, fmt.Errorf("%w: start %s is after end %s", ErrInvalidPeriod,
			models.FormatDate(start), models.FormatDate(end))
	}

	session := &models.SettlementSession{
		GroupID:     groupID,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      models.SessionStatusDraft,
		CreatedBy:   userID,
		CreatedAt:   e.timestamp(),
	}

	var created int
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		if err := requireMember(ctx, tx, groupID, userID); err != nil {
			return err
		}
		if err := tx.CreateSession(ctx, session); err != nil {
			return err
		}

		var err error
		created, err = generate(ctx, tx, session)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	observability.RecordSessionCreated()
	observability.RecordEntriesGenerated("generate", created)
	slog.Info("Created settlement session",
		"session_id", session.ID, "group_id", groupID, "user_id", userID,
		"period_start", models.FormatDate(start), "period_end", models.FormatDate(end), "entries", created)
	return session, created, nil
}

// GetSession returns a session the caller belongs to.
func (e *Engine) GetSession(ctx context.Context, sessionID, userID string) (*models.SettlementSession, error) {
	return loadSession(ctx, e.store, sessionID, userID)
}

// ListEntries returns the checklist of a session the caller belongs to.
func (e *Engine) ListEntries(ctx context.Context, sessionID, userID string) ([]models.SettlementEntry, error) {
	if _, err := loadSession(ctx, e.store, sessionID, userID); err != nil {
		return nil, err
	}
	return e.store.ListEntries(ctx, sessionID)
}

// Confirm closes a draft session. Balances are computed over its filled
// entries and reduced to net transfers. With no transfers the session is a
// zero settlement and goes straight to settled; otherwise it waits in
// pending_payment. The source payments of filled entries are tagged with the
// session so they are never settled twice; a source payment already consumed
// by another session fails the confirmation with ErrPaymentSettled until its
// entry is skipped. It returns
// the number of payments tagged.
func (e *Engine) Confirm(ctx context.Context, sessionID, userID string) (int, error) {
	var (
		tagged  int
		session *models.SettlementSession
	)
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		session, err = loadSession(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if err := requireStatus(session, models.SessionStatusDraft); err != nil {
			return err
		}

		entries, err := tx.ListEntries(ctx, sessionID)
		if err != nil {
			return err
		}
		var (
			inputs     []calculator.PaymentForBalance
			paymentIDs []string
		)
		for _, entry := range entries {
			if entry.Status != models.EntryStatusFilled || entry.ActualAmount == nil {
				continue
			}
			if entry.SourcePaymentID != nil {
				if err := requireUnsettledPayment(ctx, tx, *entry.SourcePaymentID); err != nil {
					return err
				}
				paymentIDs = append(paymentIDs, *entry.SourcePaymentID)
			}
			inputs = append(inputs, balanceInput(entry.PayerID, *entry.ActualAmount, entry.Splits))
		}
		if len(inputs) == 0 {
			return fmt.Errorf("%w: %s", ErrNothingToSettle, sessionID)
		}

		members, err := tx.ListMembers(ctx, session.GroupID)
		if err != nil {
			return err
		}
		plan := calculator.SuggestSettlements(calculator.CalculateSettlementBalances(members, inputs))

		now := e.timestamp()
		session.ConfirmedBy = &userID
		session.ConfirmedAt = &now
		session.NetTransfers = plan.Transfers
		if len(plan.Transfers) == 0 {
			session.IsZeroSettlement = true
			session.Status = models.SessionStatusSettled
			session.SettledBy = &userID
			session.SettledAt = &now
		} else {
			session.Status = models.SessionStatusPendingPayment
		}
		if err := tx.UpdateSession(ctx, session); err != nil {
			return err
		}

		tagged, err = tx.MarkPaymentsSettled(ctx, paymentIDs, sessionID)
		if err != nil {
			return err
		}
		if tagged != len(paymentIDs) {
			return fmt.Errorf("tagged %d of %d source payments of session %s", tagged, len(paymentIDs), sessionID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	var transferred int64
	for _, t := range session.NetTransfers {
		transferred += t.Amount
	}
	if session.IsZeroSettlement {
		observability.RecordSessionConfirmed(observability.OutcomeZeroSettlement, 0)
		observability.RecordSessionsSettled(observability.PathZero, 1)
	} else {
		observability.RecordSessionConfirmed(observability.OutcomePendingPayment, transferred)
	}
	observability.RecordPaymentsConsumed(tagged)

	slog.Info("Confirmed settlement session",
		"session_id", sessionID, "user_id", userID, "status", session.Status,
		"transfers", len(session.NetTransfers), "amount", transferred, "payments_tagged", tagged)
	return tagged, nil
}

// ReportPayment records that the caller sent their transfers. Only a sender
// of one of the session's transfers may report; reporting again overwrites
// the previous report.
func (e *Engine) ReportPayment(ctx context.Context, sessionID, userID string) error {
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		session, err := loadSession(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if err := requireStatus(session, models.SessionStatusPendingPayment); err != nil {
			return err
		}
		if !session.HasSender(userID) {
			return fmt.Errorf("%w: user %s, session %s", ErrNotPayer, userID, sessionID)
		}

		now := e.timestamp()
		session.PaymentReportedBy = &userID
		session.PaymentReportedAt = &now
		return tx.UpdateSession(ctx, session)
	})
	if err != nil {
		return err
	}

	slog.Info("Reported settlement payment", "session_id", sessionID, "user_id", userID)
	return nil
}

// ConfirmReceipt settles a reported session. Only a recipient of one of the
// session's transfers may confirm.
func (e *Engine) ConfirmReceipt(ctx context.Context, sessionID, userID string) (*models.SettlementSession, error) {
	var session *models.SettlementSession
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		session, err = loadSession(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if err := requireStatus(session, models.SessionStatusPendingPayment); err != nil {
			return err
		}
		if !session.HasRecipient(userID) {
			return fmt.Errorf("%w: user %s, session %s", ErrNotRecipient, userID, sessionID)
		}
		if !session.IsReported() {
			return fmt.Errorf("%w: session %s", ErrNotReported, sessionID)
		}

		now := e.timestamp()
		session.Status = models.SessionStatusSettled
		session.SettledBy = &userID
		session.SettledAt = &now
		return tx.UpdateSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	observability.RecordSessionsSettled(observability.PathReceipt, 1)
	slog.Info("Confirmed settlement receipt", "session_id", sessionID, "user_id", userID)
	return session, nil
}

// SettleConsolidatedSessions settles pending sessions whose transfers were
// netted together outside the app. Sessions already settled are skipped.
// A missing session, a session of a group the caller is not in, or a draft
// aborts the whole batch. It returns the number of sessions settled.
func (e *Engine) SettleConsolidatedSessions(ctx context.Context, sessionIDs []string, userID string) (int, error) {
	var settled int
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		settled = 0
		seen := make(map[string]bool, len(sessionIDs))
		memberOf := make(map[string]bool)
		now := e.timestamp()

		for _, id := range sessionIDs {
			if seen[id] {
				continue
			}
			seen[id] = true

			session, err := tx.GetSession(ctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
			}
			if err != nil {
				return err
			}
			if !memberOf[session.GroupID] {
				if err := requireMember(ctx, tx, session.GroupID, userID); err != nil {
					return err
				}
				memberOf[session.GroupID] = true
			}

			switch session.Status {
			case models.SessionStatusSettled:
				continue
			case models.SessionStatusDraft:
				return requireStatus(session, models.SessionStatusPendingPayment)
			}

			session.Status = models.SessionStatusSettled
			session.SettledBy = &userID
			session.SettledAt = &now
			if err := tx.UpdateSession(ctx, session); err != nil {
				return err
			}
			settled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	observability.RecordSessionsSettled(observability.PathConsolidated, settled)
	slog.Info("Settled consolidated sessions", "user_id", userID, "requested", len(sessionIDs), "settled", settled)
	return settled, nil
}

// requireUnsettledPayment fails unless the payment still exists and no other
// session has consumed it. Drafts over overlapping periods may mirror the same
// payment; only the first one confirmed may settle it.
func requireUnsettledPayment(ctx context.Context, tx storage.Tx, paymentID string) error {
	payment, err := tx.GetPayment(ctx, paymentID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s, skip its entry", ErrPaymentNotFound, paymentID)
	}
	if err != nil {
		return err
	}
	if payment.IsSettled() {
		return fmt.Errorf("%w: payment %s, session %s, skip its entry", ErrPaymentSettled, paymentID, *payment.SettlementID)
	}
	return nil
}

func balanceInput(payerID string, amount int64, splits []models.EntrySplit) calculator.PaymentForBalance {
	p := calculator.PaymentForBalance{PayerID: payerID, Amount: amount}
	for _, s := range splits {
		p.Splits = append(p.Splits, calculator.Share{UserID: s.UserID, Amount: s.Amount})
	}
	return p
}
