package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

const paymentColumns = `id, group_id, payer_id, amount, description, category_id, payment_date, settlement_id, created_at`

// CreatePayment persists a new payment and its explicit splits.
func (q *queries) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	return q.atomic(ctx, func(q *queries) error {
		_, err := q.q.ExecContext(ctx,
			`INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			payment.ID, payment.GroupID, payment.PayerID, payment.Amount, payment.Description,
			nullableString(payment.CategoryID), models.FormatDate(payment.PaymentDate),
			nullableString(payment.SettlementID), payment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		for _, split := range payment.Splits {
			_, err = q.q.ExecContext(ctx,
				"INSERT INTO payment_splits (payment_id, user_id, amount) VALUES (?, ?, ?)",
				payment.ID, split.UserID, split.Amount,
			)
			if err != nil {
				return fmt.Errorf("failed to insert payment split: %w", err)
			}
		}
		return nil
	})
}

// GetPayment retrieves a payment by ID, including its splits.
func (q *queries) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	payment, err := scanPayment(q.q.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, paymentID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("payment", paymentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	splits, err := q.paymentSplits(ctx, []string{payment.ID})
	if err != nil {
		return nil, err
	}
	payment.Splits = splits[payment.ID]

	return payment, nil
}

// DeletePayment removes a payment by ID. Settled payments are immutable and
// are reported as not found.
func (q *queries) DeletePayment(ctx context.Context, paymentID string) error {
	result, err := q.q.ExecContext(ctx,
		"DELETE FROM payments WHERE id = ? AND settlement_id IS NULL", paymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if n == 0 {
		return notFound("unsettled payment", paymentID)
	}
	return nil
}

// ListUnsettledPayments returns every unsettled payment dated on or before
// onOrBefore, oldest first.
func (q *queries) ListUnsettledPayments(ctx context.Context, groupID string, onOrBefore time.Time) ([]models.Payment, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE group_id = ? AND settlement_id IS NULL AND payment_date <= ?
		 ORDER BY payment_date, created_at, id`,
		groupID, models.FormatDate(onOrBefore),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	var ids []string
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *payment)
		ids = append(ids, payment.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	rows.Close()

	splits, err := q.paymentSplits(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		payments[i].Splits = splits[payments[i].ID]
	}

	return payments, nil
}

// MarkPaymentsSettled tags unsettled payments with the session ID.
func (q *queries) MarkPaymentsSettled(ctx context.Context, paymentIDs []string, sessionID string) (int, error) {
	if len(paymentIDs) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(paymentIDs)+1)
	args = append(args, sessionID)
	for _, id := range paymentIDs {
		args = append(args, id)
	}

	result, err := q.q.ExecContext(ctx,
		`UPDATE payments SET settlement_id = ?
		 WHERE settlement_id IS NULL AND id IN (`+placeholders(len(paymentIDs))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark payments settled: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to mark payments settled: %w", err)
	}
	return int(n), nil
}

// paymentSplits loads splits for the given payments keyed by payment ID.
func (q *queries) paymentSplits(ctx context.Context, paymentIDs []string) (map[string][]models.PaymentSplit, error) {
	result := make(map[string][]models.PaymentSplit)
	if len(paymentIDs) == 0 {
		return result, nil
	}

	args := make([]any, len(paymentIDs))
	for i, id := range paymentIDs {
		args[i] = id
	}

	rows, err := q.q.QueryContext(ctx,
		`SELECT payment_id, user_id, amount FROM payment_splits
		 WHERE payment_id IN (`+placeholders(len(paymentIDs))+`)
		 ORDER BY payment_id, user_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var paymentID string
		var split models.PaymentSplit
		if err := rows.Scan(&paymentID, &split.UserID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan payment split: %w", err)
		}
		result[paymentID] = append(result[paymentID], split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment splits: %w", err)
	}

	return result, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		payment      models.Payment
		categoryID   sql.NullString
		paymentDate  string
		settlementID sql.NullString
	)
	err := row.Scan(&payment.ID, &payment.GroupID, &payment.PayerID, &payment.Amount,
		&payment.Description, &categoryID, &paymentDate, &settlementID, &payment.CreatedAt)
	if err != nil {
		return nil, err
	}

	payment.CategoryID = stringPtr(categoryID)
	payment.SettlementID = stringPtr(settlementID)
	if payment.PaymentDate, err = parseDate("payment_date", paymentDate); err != nil {
		return nil, err
	}
	return &payment, nil
}
