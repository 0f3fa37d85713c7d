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
)

// farFuture bounds "every unsettled payment" queries from above.
var farFuture = models.Date(9999, time.December, 31)

// RecordPayment validates and stores a new payment logged by userID. The
// payer and every split member must belong to the group, and explicit splits
// must add up to the amount.
func (e *Engine) RecordPayment(ctx context.Context, userID string, payment *models.Payment) error {
	if payment.Amount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAmount, payment.Amount)
	}
	var splits []models.EntrySplit
	for _, s := range payment.Splits {
		splits = append(splits, models.EntrySplit{UserID: s.UserID, Amount: s.Amount})
	}
	if err := validateSplits(splits, payment.Amount); err != nil {
		return err
	}

	payment.PaymentDate = models.Date(payment.PaymentDate.Date())
	payment.SettlementID = nil

	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		if err := requireMember(ctx, tx, payment.GroupID, userID); err != nil {
			return err
		}
		if err := requireMember(ctx, tx, payment.GroupID, payment.PayerID); err != nil {
			return err
		}
		if err := requireSplitMembers(ctx, tx, payment.GroupID, splits); err != nil {
			return err
		}
		return tx.CreatePayment(ctx, payment)
	})
	if err != nil {
		return err
	}

	slog.Info("Recorded payment",
		"payment_id", payment.ID, "group_id", payment.GroupID, "payer_id", payment.PayerID,
		"amount", payment.Amount, "splits", len(payment.Splits))
	return nil
}

// DeletePayment removes an unsettled payment. Payments consumed by a
// settlement are immutable.
func (e *Engine) DeletePayment(ctx context.Context, paymentID, userID string) error {
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		payment, err := tx.GetPayment(ctx, paymentID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPaymentNotFound, paymentID)
		}
		if err != nil {
			return err
		}
		if err := requireMember(ctx, tx, payment.GroupID, userID); err != nil {
			return err
		}
		if payment.IsSettled() {
			return fmt.Errorf("%w: payment %s, session %s", ErrPaymentSettled, paymentID, *payment.SettlementID)
		}
		return tx.DeletePayment(ctx, paymentID)
	})
	if err != nil {
		return err
	}

	slog.Info("Deleted payment", "payment_id", paymentID, "user_id", userID)
	return nil
}

// Balances aggregates every unsettled payment of the group into member
// balances and the transfers that would settle them.
func (e *Engine) Balances(ctx context.Context, groupID, userID string) ([]calculator.Balance, calculator.SettlementPlan, error) {
	var (
		members  []models.Member
		payments []models.Payment
	)
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		if err := requireMember(ctx, tx, groupID, userID); err != nil {
			return err
		}

		var err error
		if members, err = tx.ListMembers(ctx, groupID); err != nil {
			return err
		}
		payments, err = tx.ListUnsettledPayments(ctx, groupID, farFuture)
		return err
	})
	if err != nil {
		return nil, calculator.SettlementPlan{}, err
	}

	inputs := make([]calculator.PaymentForBalance, 0, len(payments))
	for _, p := range payments {
		input := calculator.PaymentForBalance{PayerID: p.PayerID, Amount: p.Amount}
		for _, s := range p.Splits {
			input.Splits = append(input.Splits, calculator.Share{UserID: s.UserID, Amount: s.Amount})
		}
		inputs = append(inputs, input)
	}

	balances := calculator.CalculateBalances(members, inputs)
	return balances, calculator.SuggestSettlements(balances), nil
}

// Members returns the roster of a group the caller belongs to.
func (e *Engine) Members(ctx context.Context, groupID, userID string) ([]models.Member, error) {
	if err := requireMember(ctx, e.store, groupID, userID); err != nil {
		return nil, err
	}
	return e.store.ListMembers(ctx, groupID)
}
