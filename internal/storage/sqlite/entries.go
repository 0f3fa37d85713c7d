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

const entryColumns = `id, session_id, rule_id, source_payment_id, description, category_id,
	expected_amount, actual_amount, payer_id, payment_date, status, split_type, entry_type,
	filled_by, filled_at`

// InsertEntry persists a new settlement entry and its splits.
func (q *queries) InsertEntry(ctx context.Context, entry *models.SettlementEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	return q.atomic(ctx, func(q *queries) error {
		_, err := q.q.ExecContext(ctx,
			`INSERT INTO settlement_entries (`+entryColumns+`, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, entry.SessionID, nullableString(entry.RuleID),
			nullableString(entry.SourcePaymentID), entry.Description,
			nullableString(entry.CategoryID), nullableInt(entry.ExpectedAmount),
			nullableInt(entry.ActualAmount), entry.PayerID, models.FormatDate(entry.PaymentDate),
			string(entry.Status), string(entry.SplitType), string(entry.EntryType),
			nullableString(entry.FilledBy), nullableUnix(entry.FilledAt), time.Now().UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
		return q.insertEntrySplits(ctx, entry)
	})
}

// GetEntry retrieves a settlement entry by ID, including its splits.
func (q *queries) GetEntry(ctx context.Context, entryID string) (*models.SettlementEntry, error) {
	entry, err := scanEntry(q.q.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM settlement_entries WHERE id = ?`, entryID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("entry", entryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	splits, err := q.entrySplits(ctx, []string{entry.ID})
	if err != nil {
		return nil, err
	}
	entry.Splits = splits[entry.ID]

	return entry, nil
}

// UpdateEntry rewrites an entry's mutable fields and replaces its splits.
func (q *queries) UpdateEntry(ctx context.Context, entry *models.SettlementEntry) error {
	return q.atomic(ctx, func(q *queries) error {
		result, err := q.q.ExecContext(ctx,
			`UPDATE settlement_entries SET description = ?, category_id = ?, expected_amount = ?,
			   actual_amount = ?, payer_id = ?, payment_date = ?, status = ?, split_type = ?,
			   filled_by = ?, filled_at = ?
			 WHERE id = ?`,
			entry.Description, nullableString(entry.CategoryID), nullableInt(entry.ExpectedAmount),
			nullableInt(entry.ActualAmount), entry.PayerID, models.FormatDate(entry.PaymentDate),
			string(entry.Status), string(entry.SplitType), nullableString(entry.FilledBy),
			nullableUnix(entry.FilledAt), entry.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		if n == 0 {
			return notFound("entry", entry.ID)
		}

		if _, err := q.q.ExecContext(ctx, "DELETE FROM entry_splits WHERE entry_id = ?", entry.ID); err != nil {
			return fmt.Errorf("failed to delete entry splits: %w", err)
		}
		return q.insertEntrySplits(ctx, entry)
	})
}

// DeleteEntry removes an entry; its splits cascade.
func (q *queries) DeleteEntry(ctx context.Context, entryID string) error {
	result, err := q.q.ExecContext(ctx, "DELETE FROM settlement_entries WHERE id = ?", entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if n == 0 {
		return notFound("entry", entryID)
	}
	return nil
}

// DeleteSessionEntries removes every entry of a session.
func (q *queries) DeleteSessionEntries(ctx context.Context, sessionID string) (int, error) {
	result, err := q.q.ExecContext(ctx, "DELETE FROM settlement_entries WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete session entries: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete session entries: %w", err)
	}
	return int(n), nil
}

// ListEntries returns a session's entries ordered by payment date, then
// insertion order.
func (q *queries) ListEntries(ctx context.Context, sessionID string) ([]models.SettlementEntry, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM settlement_entries
		 WHERE session_id = ?
		 ORDER BY payment_date, created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []models.SettlementEntry
	var ids []string
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *entry)
		ids = append(ids, entry.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	rows.Close()

	splits, err := q.entrySplits(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Splits = splits[entries[i].ID]
	}

	return entries, nil
}

func (q *queries) insertEntrySplits(ctx context.Context, entry *models.SettlementEntry) error {
	for _, split := range entry.Splits {
		_, err := q.q.ExecContext(ctx,
			"INSERT INTO entry_splits (entry_id, user_id, amount) VALUES (?, ?, ?)",
			entry.ID, split.UserID, split.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry split: %w", err)
		}
	}
	return nil
}

func (q *queries) entrySplits(ctx context.Context, entryIDs []string) (map[string][]models.EntrySplit, error) {
	result := make(map[string][]models.EntrySplit)
	if len(entryIDs) == 0 {
		return result, nil
	}

	args := make([]any, len(entryIDs))
	for i, id := range entryIDs {
		args[i] = id
	}

	rows, err := q.q.QueryContext(ctx,
		`SELECT entry_id, user_id, amount FROM entry_splits
		 WHERE entry_id IN (`+placeholders(len(entryIDs))+`)
		 ORDER BY entry_id, user_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryID string
		var split models.EntrySplit
		if err := rows.Scan(&entryID, &split.UserID, &split.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan entry split: %w", err)
		}
		result[entryID] = append(result[entryID], split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entry splits: %w", err)
	}

	return result, nil
}

func scanEntry(row rowScanner) (*models.SettlementEntry, error) {
	var (
		entry                        models.SettlementEntry
		ruleID, sourcePaymentID      sql.NullString
		categoryID, filledBy         sql.NullString
		expectedAmount, actualAmount sql.NullInt64
		filledAt                     sql.NullInt64
		paymentDate                  string
		status, splitType, entryType string
	)
	err := row.Scan(&entry.ID, &entry.SessionID, &ruleID, &sourcePaymentID, &entry.Description,
		&categoryID, &expectedAmount, &actualAmount, &entry.PayerID, &paymentDate, &status,
		&splitType, &entryType, &filledBy, &filledAt)
	if err != nil {
		return nil, err
	}

	entry.RuleID = stringPtr(ruleID)
	entry.SourcePaymentID = stringPtr(sourcePaymentID)
	entry.CategoryID = stringPtr(categoryID)
	entry.ExpectedAmount = intPtr(expectedAmount)
	entry.ActualAmount = intPtr(actualAmount)
	entry.Status = models.EntryStatus(status)
	entry.SplitType = models.SplitType(splitType)
	entry.EntryType = models.EntryType(entryType)
	entry.FilledBy = stringPtr(filledBy)
	entry.FilledAt = unixPtr(filledAt)
	if entry.PaymentDate, err = parseDate("payment_date", paymentDate); err != nil {
		return nil, err
	}
	return &entry, nil
}
