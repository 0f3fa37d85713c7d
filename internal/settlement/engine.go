// Package settlement runs the settlement workflow of a group: it builds a
// session's entry checklist from recurring rules and unsettled payments,
// keeps it in sync while the session is a draft, and walks the session through
// confirmation, payment reporting and receipt.
//
// Every public operation runs in one store transaction. Preconditions are
// checked inside that transaction, so two callers racing on the same session
// serialize and the loser observes the winner's state.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// Engine executes settlement operations against a store.
type Engine struct {
	store storage.Store
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine backed by store.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) timestamp() time.Time {
	return e.now().UTC().Truncate(time.Second)
}

// requireMember fails with ErrNotMember unless userID belongs to groupID.
func requireMember(ctx context.Context, tx storage.Tx, groupID, userID string) error {
	ok, err := tx.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %s, group %s", ErrNotMember, userID, groupID)
	}
	return nil
}

// loadSession fetches a session and checks the caller's membership.
func loadSession(ctx context.Context, tx storage.Tx, sessionID, userID string) (*models.SettlementSession, error) {
	session, err := tx.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, tx, session.GroupID, userID); err != nil {
		return nil, err
	}
	return session, nil
}

// requireStatus fails with ErrInvalidStatus unless the session is in want.
func requireStatus(session *models.SettlementSession, want models.SessionStatus) error {
	if session.Status != want {
		return fmt.Errorf("%w: session %s is %s, want %s", ErrInvalidStatus, session.ID, session.Status, want)
	}
	return nil
}

// validateSplits rejects negative shares, a member listed twice and shares
// that do not sum to amount. No shares means equal division and is always valid.
func validateSplits(splits []models.EntrySplit, amount int64) error {
	if len(splits) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(splits))
	for _, s := range splits {
		if s.Amount < 0 {
			return fmt.Errorf("%w: negative share for %s", ErrInvalidAmount, s.UserID)
		}
		if seen[s.UserID] {
			return fmt.Errorf("%w: %s", ErrDuplicateSplit, s.UserID)
		}
		seen[s.UserID] = true
	}
	if sum := models.SumEntrySplits(splits); sum != amount {
		return fmt.Errorf("%w: splits total %d, amount %d", ErrSplitMismatch, sum, amount)
	}
	return nil
}

// requireSplitMembers fails with ErrNotMember unless every share is owed by a
// member of groupID.
func requireSplitMembers(ctx context.Context, tx storage.Tx, groupID string, splits []models.EntrySplit) error {
	for _, s := range splits {
		if err := requireMember(ctx, tx, groupID, s.UserID); err != nil {
			return err
		}
	}
	return nil
}

func int64Ptr(v int64) *int64 {
	return &v
}
