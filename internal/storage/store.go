// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

// Tx is the set of operations available inside (or outside) a transaction.
// The settlement engine only ever receives a Tx from Store.WithTx, so every
// multi-row effect it performs commits or rolls back as a unit.
type Tx interface {
	// Users and groups. Management lives outside this service; these exist for
	// membership checks, display names and seeding.
	CreateUser(ctx context.Context, user *models.User) error
	CreateGroup(ctx context.Context, group *models.Group) error
	AddGroupMember(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)

	// Payments.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	DeletePayment(ctx context.Context, paymentID string) error
	// ListUnsettledPayments returns payments of the group with no settlement and
	// a payment date on or before onOrBefore. There is no lower bound.
	ListUnsettledPayments(ctx context.Context, groupID string, onOrBefore time.Time) ([]models.Payment, error)
	// MarkPaymentsSettled sets settlement_id on the given payments that do not
	// have one yet and returns how many rows changed.
	MarkPaymentsSettled(ctx context.Context, paymentIDs []string, sessionID string) (int, error)

	// Recurring rules.
	CreateRule(ctx context.Context, rule *models.RecurringRule) error
	UpdateRule(ctx context.Context, rule *models.RecurringRule) error
	ListActiveRules(ctx context.Context, groupID string) ([]models.RecurringRule, error)

	// Settlement sessions.
	CreateSession(ctx context.Context, session *models.SettlementSession) error
	GetSession(ctx context.Context, sessionID string) (*models.SettlementSession, error)
	UpdateSession(ctx context.Context, session *models.SettlementSession) error

	// Settlement entries.
	InsertEntry(ctx context.Context, entry *models.SettlementEntry) error
	GetEntry(ctx context.Context, entryID string) (*models.SettlementEntry, error)
	// UpdateEntry rewrites an entry's mutable fields and replaces its splits.
	UpdateEntry(ctx context.Context, entry *models.SettlementEntry) error
	DeleteEntry(ctx context.Context, entryID string) error
	DeleteSessionEntries(ctx context.Context, sessionID string) (int, error)
	ListEntries(ctx context.Context, sessionID string) ([]models.SettlementEntry, error)
}

// Store defines the interface for settleup storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engine or service layer.
type Store interface {
	Tx

	// WithTx runs fn inside a single write transaction. If fn returns an error
	// the transaction is rolled back and the error returned unchanged.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}
