package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

// CreateSession persists a new settlement session.
func (q *queries) CreateSession(ctx context.Context, session *models.SettlementSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	transfers, err := encodeTransfers(session.NetTransfers)
	if err != nil {
		return err
	}

	_, err = q.q.ExecContext(ctx,
		`INSERT INTO settlement_sessions (id, group_id, period_start, period_end, status,
		   created_by, created_at, confirmed_by, confirmed_at, net_transfers, is_zero_settlement,
		   payment_reported_by, payment_reported_at, settled_by, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.GroupID, models.FormatDate(session.PeriodStart),
		models.FormatDate(session.PeriodEnd), string(session.Status), session.CreatedBy,
		session.CreatedAt.Unix(), nullableString(session.ConfirmedBy),
		nullableUnix(session.ConfirmedAt), transfers, session.IsZeroSettlement,
		nullableString(session.PaymentReportedBy), nullableUnix(session.PaymentReportedAt),
		nullableString(session.SettledBy), nullableUnix(session.SettledAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSession retrieves a settlement session by ID.
func (q *queries) GetSession(ctx context.Context, sessionID string) (*models.SettlementSession, error) {
	var (
		session                 models.SettlementSession
		periodStart, periodEnd  string
		status                  string
		createdAt               int64
		confirmedBy, reportedBy sql.NullString
		settledBy, transfers    sql.NullString
		confirmedAt, reportedAt sql.NullInt64
		settledAt               sql.NullInt64
	)

	err := q.q.QueryRowContext(ctx,
		`SELECT id, group_id, period_start, period_end, status, created_by, created_at,
		   confirmed_by, confirmed_at, net_transfers, is_zero_settlement,
		   payment_reported_by, payment_reported_at, settled_by, settled_at
		 FROM settlement_sessions WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &session.GroupID, &periodStart, &periodEnd, &status,
		&session.CreatedBy, &createdAt, &confirmedBy, &confirmedAt, &transfers,
		&session.IsZeroSettlement, &reportedBy, &reportedAt, &settledBy, &settledAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("session", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Status = models.SessionStatus(status)
	session.CreatedAt = time.Unix(createdAt, 0).UTC()
	session.ConfirmedBy = stringPtr(confirmedBy)
	session.ConfirmedAt = unixPtr(confirmedAt)
	session.PaymentReportedBy = stringPtr(reportedBy)
	session.PaymentReportedAt = unixPtr(reportedAt)
	session.SettledBy = stringPtr(settledBy)
	session.SettledAt = unixPtr(settledAt)

	if session.PeriodStart, err = parseDate("period_start", periodStart); err != nil {
		return nil, err
	}
	if session.PeriodEnd, err = parseDate("period_end", periodEnd); err != nil {
		return nil, err
	}
	if session.NetTransfers, err = decodeTransfers(transfers); err != nil {
		return nil, err
	}

	return &session, nil
}

// UpdateSession writes back a session's lifecycle fields. Period, group and
// creator are immutable.
func (q *queries) UpdateSession(ctx context.Context, session *models.SettlementSession) error {
	transfers, err := encodeTransfers(session.NetTransfers)
	if err != nil {
		return err
	}

	result, err := q.q.ExecContext(ctx,
		`UPDATE settlement_sessions SET status = ?, confirmed_by = ?, confirmed_at = ?,
		   net_transfers = ?, is_zero_settlement = ?, payment_reported_by = ?,
		   payment_reported_at = ?, settled_by = ?, settled_at = ?
		 WHERE id = ?`,
		string(session.Status), nullableString(session.ConfirmedBy),
		nullableUnix(session.ConfirmedAt), transfers, session.IsZeroSettlement,
		nullableString(session.PaymentReportedBy), nullableUnix(session.PaymentReportedAt),
		nullableString(session.SettledBy), nullableUnix(session.SettledAt), session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n == 0 {
		return notFound("session", session.ID)
	}

	return nil
}

// encodeTransfers stores nil as NULL and anything else, including an empty
// list, as a JSON array.
func encodeTransfers(transfers []models.Transfer) (any, error) {
	if transfers == nil {
		return nil, nil
	}
	data, err := json.Marshal(transfers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode net transfers: %w", err)
	}
	return string(data), nil
}

func decodeTransfers(ns sql.NullString) ([]models.Transfer, error) {
	if !ns.Valid {
		return nil, nil
	}
	transfers := []models.Transfer{}
	if err := json.Unmarshal([]byte(ns.String), &transfers); err != nil {
		return nil, fmt.Errorf("failed to decode net transfers: %w", err)
	}
	return transfers, nil
}
