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

// GenerateEntries rebuilds a draft session's checklist from scratch: one
// pending entry per rule occurrence in the period and one filled entry per
// unsettled payment dated on or before the period end. It returns the number
// of entries created.
func (e *Engine) GenerateEntries(ctx context.Context, sessionID, userID string) (int, error) {
	var created int
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		session, err := loadSession(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if err := requireStatus(session, models.SessionStatusDraft); err != nil {
			return err
		}

		created, err = generate(ctx, tx, session)
		return err
	})
	if err != nil {
		return 0, err
	}

	observability.RecordEntriesGenerated("generate", created)
	slog.Info("Generated settlement entries", "session_id", sessionID, "user_id", userID, "count", created)
	return created, nil
}

func generate(ctx context.Context, tx storage.Tx, session *models.SettlementSession) (int, error) {
	if _, err := tx.DeleteSessionEntries(ctx, session.ID); err != nil {
		return 0, err
	}

	occurrences, err := expectedOccurrences(ctx, tx, session)
	if err != nil {
		return 0, err
	}
	payments, err := tx.ListUnsettledPayments(ctx, session.GroupID, session.PeriodEnd)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, occ := range occurrences {
		if err := tx.InsertEntry(ctx, ruleEntry(session.ID, occ.rule, occ.date)); err != nil {
			return 0, err
		}
		created++
	}
	for i := range payments {
		if err := tx.InsertEntry(ctx, paymentEntry(session.ID, &payments[i])); err != nil {
			return 0, err
		}
		created++
	}
	return created, nil
}

// RefreshEntries re-syncs a draft session's checklist with the current rules
// and payments without discarding user decisions:
//   - filled and skipped entries are never touched
//   - pending rule entries still scheduled are updated from their rule,
//     split template included
//   - pending rule entries no longer scheduled are deleted
//   - missing rule occurrences and unsettled payments are added
//
// It returns the number of entries added.
func (e *Engine) RefreshEntries(ctx context.Context, sessionID, userID string) (int, error) {
	var added, removed int
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		session, err := loadSession(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if err := requireStatus(session, models.SessionStatusDraft); err != nil {
			return err
		}

		added, removed, err = refresh(ctx, tx, session)
		return err
	})
	if err != nil {
		return 0, err
	}

	observability.RecordEntriesGenerated("refresh", added)
	slog.Info("Refreshed settlement entries",
		"session_id", sessionID, "user_id", userID, "added", added, "removed", removed)
	return added, nil
}

func refresh(ctx context.Context, tx storage.Tx, session *models.SettlementSession) (added, removed int, err error) {
	occurrences, err := expectedOccurrences(ctx, tx, session)
	if err != nil {
		return 0, 0, err
	}
	expected := make(map[string]occurrence, len(occurrences))
	for _, occ := range occurrences {
		expected[occ.key()] = occ
	}

	entries, err := tx.ListEntries(ctx, session.ID)
	if err != nil {
		return 0, 0, err
	}

	handledKeys := make(map[string]bool)
	handledPayments := make(map[string]bool)
	for i := range entries {
		entry := &entries[i]
		switch {
		case entry.SourcePaymentID != nil:
			handledPayments[*entry.SourcePaymentID] = true

		case entry.RuleID != nil:
			key := entry.RuleKey()
			occ, ok := expected[key]
			if !ok {
				if entry.Status != models.EntryStatusPending {
					continue
				}
				if err := tx.DeleteEntry(ctx, entry.ID); err != nil {
					return 0, 0, err
				}
				removed++
				continue
			}

			handledKeys[key] = true
			if entry.Status == models.EntryStatusPending && syncFromRule(entry, occ.rule) {
				if err := tx.UpdateEntry(ctx, entry); err != nil {
					return 0, 0, err
				}
			}
		}
	}

	for _, occ := range occurrences {
		if handledKeys[occ.key()] {
			continue
		}
		if err := tx.InsertEntry(ctx, ruleEntry(session.ID, occ.rule, occ.date)); err != nil {
			return 0, 0, err
		}
		added++
	}

	payments, err := tx.ListUnsettledPayments(ctx, session.GroupID, session.PeriodEnd)
	if err != nil {
		return 0, 0, err
	}
	for i := range payments {
		if handledPayments[payments[i].ID] {
			continue
		}
		if err := tx.InsertEntry(ctx, paymentEntry(session.ID, &payments[i])); err != nil {
			return 0, 0, err
		}
		added++
	}

	return added, removed, nil
}

// occurrence is one scheduled firing of a rule.
type occurrence struct {
	rule *models.RecurringRule
	date time.Time
}

func (o occurrence) key() string {
	return models.RuleOccurrenceKey(o.rule.ID, o.date)
}

// expectedOccurrences lists every active rule occurrence in the session's
// period, rule by rule in chronological order.
func expectedOccurrences(ctx context.Context, tx storage.Tx, session *models.SettlementSession) ([]occurrence, error) {
	rules, err := tx.ListActiveRules(ctx, session.GroupID)
	if err != nil {
		return nil, err
	}

	var out []occurrence
	for i := range rules {
		rule := &rules[i]
		for _, date := range calculator.RuleDatesInPeriod(calculator.RecurrenceOf(rule), session.PeriodStart, session.PeriodEnd) {
			out = append(out, occurrence{rule: rule, date: date})
		}
	}
	return out, nil
}

func ruleEntry(sessionID string, rule *models.RecurringRule, date time.Time) *models.SettlementEntry {
	ruleID := rule.ID
	entry := &models.SettlementEntry{
		SessionID:   sessionID,
		RuleID:      &ruleID,
		Description: rule.Description,
		CategoryID:  rule.CategoryID,
		PayerID:     rule.DefaultPayerID,
		PaymentDate: date,
		Status:      models.EntryStatusPending,
		SplitType:   rule.SplitType,
		EntryType:   models.EntryTypeRule,
	}
	if rule.DefaultAmount != nil {
		entry.ExpectedAmount = int64Ptr(*rule.DefaultAmount)
	}
	if rule.SplitType == models.SplitTypeCustom {
		entry.Splits = ruleEntrySplits(rule)
	}
	return entry
}

// ruleEntrySplits copies a rule's split template. A share without an explicit
// amount is floor(default amount × percentage / 100); shares that cannot be
// computed because the rule has no default amount are left out.
func ruleEntrySplits(rule *models.RecurringRule) []models.EntrySplit {
	var splits []models.EntrySplit
	for _, s := range rule.Splits {
		switch {
		case s.Amount != nil:
			splits = append(splits, models.EntrySplit{UserID: s.UserID, Amount: *s.Amount})
		case s.Percentage != nil && rule.DefaultAmount != nil:
			splits = append(splits, models.EntrySplit{
				UserID: s.UserID,
				Amount: calculator.PercentageShare(*rule.DefaultAmount, *s.Percentage),
			})
		}
	}
	return splits
}

// syncFromRule copies the rule's live fields, including its split template,
// onto a pending entry and reports whether anything changed.
func syncFromRule(entry *models.SettlementEntry, rule *models.RecurringRule) bool {
	var splits []models.EntrySplit
	if rule.SplitType == models.SplitTypeCustom {
		splits = ruleEntrySplits(rule)
	}

	changed := entry.Description != rule.Description ||
		entry.PayerID != rule.DefaultPayerID ||
		!equalStringPtr(entry.CategoryID, rule.CategoryID) ||
		!equalInt64Ptr(entry.ExpectedAmount, rule.DefaultAmount) ||
		entry.SplitType != rule.SplitType ||
		!equalSplits(entry.Splits, splits)
	if !changed {
		return false
	}

	entry.Description = rule.Description
	entry.PayerID = rule.DefaultPayerID
	entry.CategoryID = rule.CategoryID
	entry.ExpectedAmount = nil
	if rule.DefaultAmount != nil {
		entry.ExpectedAmount = int64Ptr(*rule.DefaultAmount)
	}
	entry.SplitType = rule.SplitType
	entry.Splits = splits
	return true
}

func paymentEntry(sessionID string, payment *models.Payment) *models.SettlementEntry {
	paymentID := payment.ID
	entry := &models.SettlementEntry{
		SessionID:       sessionID,
		SourcePaymentID: &paymentID,
		Description:     payment.Description,
		CategoryID:      payment.CategoryID,
		ExpectedAmount:  int64Ptr(payment.Amount),
		ActualAmount:    int64Ptr(payment.Amount),
		PayerID:         payment.PayerID,
		PaymentDate:     payment.PaymentDate,
		Status:          models.EntryStatusFilled,
		SplitType:       payment.SplitType(),
		EntryType:       models.EntryTypeExisting,
	}
	for _, s := range payment.Splits {
		entry.Splits = append(entry.Splits, models.EntrySplit{UserID: s.UserID, Amount: s.Amount})
	}
	return entry
}

// FillEntry records the actual amount of a draft entry. Supplied splits must
// add up to amount; without them, a custom split that no longer matches the
// amount falls back to equal division.
func (e *Engine) FillEntry(ctx context.Context, entryID, userID string, amount int64, splits []models.EntrySplit) (*models.SettlementEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if err := validateSplits(splits, amount); err != nil {
		return nil, err
	}

	var entry *models.SettlementEntry
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		var (
			session *models.SettlementSession
			err     error
		)
		entry, session, err = loadDraftEntry(ctx, tx, entryID, userID)
		if err != nil {
			return err
		}
		if err := requireSplitMembers(ctx, tx, session.GroupID, splits); err != nil {
			return err
		}

		now := e.timestamp()
		entry.ActualAmount = int64Ptr(amount)
		entry.Status = models.EntryStatusFilled
		entry.FilledBy = &userID
		entry.FilledAt = &now
		switch {
		case len(splits) > 0:
			entry.Splits = splits
			entry.SplitType = models.SplitTypeCustom
		case len(entry.Splits) > 0 && models.SumEntrySplits(entry.Splits) != amount:
			entry.Splits = nil
			entry.SplitType = models.SplitTypeEqual
		}

		return tx.UpdateEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Filled settlement entry", "entry_id", entryID, "user_id", userID, "amount", amount)
	return entry, nil
}

// SkipEntry dismisses a draft entry. Skipped entries carry no amount and do
// not count at confirmation.
func (e *Engine) SkipEntry(ctx context.Context, entryID, userID string) (*models.SettlementEntry, error) {
	var entry *models.SettlementEntry
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		entry, _, err = loadDraftEntry(ctx, tx, entryID, userID)
		if err != nil {
			return err
		}

		now := e.timestamp()
		entry.ActualAmount = nil
		entry.Status = models.EntryStatusSkipped
		entry.FilledBy = &userID
		entry.FilledAt = &now

		return tx.UpdateEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Skipped settlement entry", "entry_id", entryID, "user_id", userID)
	return entry, nil
}

// ManualEntry describes a one-off charge added to a draft session by hand.
type ManualEntry struct {
	Description string
	CategoryID  *string
	Amount      int64
	PayerID     string
	// PaymentDate must fall inside the session period. Zero means the period end.
	PaymentDate time.Time
	Splits      []models.EntrySplit
}

// AddManualEntry appends a filled manual entry to a draft session.
func (e *Engine) AddManualEntry(ctx context.Context, sessionID, userID string, in ManualEntry) (*models.SettlementEntry, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, in.Amount)
	}
	if err := validateSplits(in.Splits, in.Amount); err != nil {
		return nil, err
	}

	var entry *models.SettlementEntry
	err := e.store.WithTx(ctx, func(tx storage.Tx) error {
		session, err := loadSession(ctx, tx, sessionID, userID)
		if err != nil {
			return err
		}
		if err := requireStatus(session, models.SessionStatusDraft); err != nil {
			return err
		}
		if err := requireMember(ctx, tx, session.GroupID, in.PayerID); err != nil {
			return err
		}
		if err := requireSplitMembers(ctx, tx, session.GroupID, in.Splits); err != nil {
			return err
		}

		date := in.PaymentDate
		if date.IsZero() {
			date = session.PeriodEnd
		}
		if date.Before(session.PeriodStart) || date.After(session.PeriodEnd) {
			return fmt.Errorf("%w: %s is outside %s..%s", ErrInvalidPeriod,
				models.FormatDate(date), models.FormatDate(session.PeriodStart), models.FormatDate(session.PeriodEnd))
		}

		now := e.timestamp()
		entry = &models.SettlementEntry{
			SessionID:      session.ID,
			Description:    in.Description,
			CategoryID:     in.CategoryID,
			ExpectedAmount: int64Ptr(in.Amount),
			ActualAmount:   int64Ptr(in.Amount),
			PayerID:        in.PayerID,
			PaymentDate:    date,
			Status:         models.EntryStatusFilled,
			SplitType:      models.SplitTypeEqual,
			EntryType:      models.EntryTypeManual,
			FilledBy:       &userID,
			FilledAt:       &now,
			Splits:         in.Splits,
		}
		if len(in.Splits) > 0 {
			entry.SplitType = models.SplitTypeCustom
		}
		return tx.InsertEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Added manual settlement entry", "session_id", sessionID, "entry_id", entry.ID, "user_id", userID)
	return entry, nil
}

// loadDraftEntry fetches an entry whose session is a draft the caller belongs
// to, along with that session.
func loadDraftEntry(ctx context.Context, tx storage.Tx, entryID, userID string) (*models.SettlementEntry, *models.SettlementSession, error) {
	entry, err := tx.GetEntry(ctx, entryID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	if err != nil {
		return nil, nil, err
	}

	session, err := loadSession(ctx, tx, entry.SessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireStatus(session, models.SessionStatusDraft); err != nil {
		return nil, nil, err
	}
	return entry, session, nil
}

// equalSplits compares shares regardless of order.
func equalSplits(a, b []models.EntrySplit) bool {
	if len(a) != len(b) {
		return false
	}
	shares := make(map[string]int64, len(a))
	for _, s := range a {
		shares[s.UserID] = s.Amount
	}
	for _, s := range b {
		if amount, ok := shares[s.UserID]; !ok || amount != s.Amount {
			return false
		}
	}
	return true
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
