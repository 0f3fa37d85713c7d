package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// CreateRule persists a recurring rule and its split template.
func (q *queries) CreateRule(ctx context.Context, rule *models.RecurringRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}

	return q.atomic(ctx, func(q *queries) error {
		_, err := q.q.ExecContext(ctx,
			`INSERT INTO recurring_rules (id, group_id, description, category_id, default_amount,
			   is_variable, day_of_month, interval_months, default_payer_id, split_type,
			   is_active, start_date, end_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rule.ID, rule.GroupID, rule.Description, nullableString(rule.CategoryID),
			nullableInt(rule.DefaultAmount), rule.IsVariable, rule.DayOfMonth, rule.IntervalMonths,
			rule.DefaultPayerID, string(rule.SplitType), rule.IsActive,
			models.FormatDate(rule.StartDate), nullableDate(rule.EndDate), rule.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert rule: %w", err)
		}
		return q.insertRuleSplits(ctx, rule)
	})
}

// UpdateRule rewrites a rule's mutable fields and replaces its split template.
// The anchor (CreatedAt) never changes.
func (q *queries) UpdateRule(ctx context.Context, rule *models.RecurringRule) error {
	return q.atomic(ctx, func(q *queries) error {
		result, err := q.q.ExecContext(ctx,
			`UPDATE recurring_rules SET description = ?, category_id = ?, default_amount = ?,
			   is_variable = ?, day_of_month = ?, interval_months = ?, default_payer_id = ?,
			   split_type = ?, is_active = ?, start_date = ?, end_date = ?
			 WHERE id = ?`,
			rule.Description, nullableString(rule.CategoryID), nullableInt(rule.DefaultAmount),
			rule.IsVariable, rule.DayOfMonth, rule.IntervalMonths, rule.DefaultPayerID,
			string(rule.SplitType), rule.IsActive, models.FormatDate(rule.StartDate),
			nullableDate(rule.EndDate), rule.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update rule: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update rule: %w", err)
		}
		if n == 0 {
			return notFound("rule", rule.ID)
		}

		if _, err := q.q.ExecContext(ctx, "DELETE FROM rule_splits WHERE rule_id = ?", rule.ID); err != nil {
			return fmt.Errorf("failed to delete rule splits: %w", err)
		}
		return q.insertRuleSplits(ctx, rule)
	})
}

func (q *queries) insertRuleSplits(ctx context.Context, rule *models.RecurringRule) error {
	for i, split := range rule.Splits {
		var pct any
		if split.Percentage != nil {
			pct = split.Percentage.String()
		}
		_, err := q.q.ExecContext(ctx,
			"INSERT INTO rule_splits (rule_id, position, user_id, amount, percentage) VALUES (?, ?, ?, ?, ?)",
			rule.ID, i, split.UserID, nullableInt(split.Amount), pct,
		)
		if err != nil {
			return fmt.Errorf("failed to insert rule split: %w", err)
		}
	}
	return nil
}

// ListActiveRules returns the group's active rules with their split templates.
func (q *queries) ListActiveRules(ctx context.Context, groupID string) ([]models.RecurringRule, error) {
	rows, err := q.q.QueryContext(ctx,
		`SELECT id, group_id, description, category_id, default_amount, is_variable,
		   day_of_month, interval_months, default_payer_id, split_type, is_active,
		   start_date, end_date, created_at
		 FROM recurring_rules
		 WHERE group_id = ? AND is_active = 1
		 ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []models.RecurringRule
	for rows.Next() {
		var (
			rule          models.RecurringRule
			categoryID    sql.NullString
			defaultAmount sql.NullInt64
			splitType     string
			startDate     string
			endDate       sql.NullString
			createdAt     int64
		)
		err := rows.Scan(&rule.ID, &rule.GroupID, &rule.Description, &categoryID, &defaultAmount,
			&rule.IsVariable, &rule.DayOfMonth, &rule.IntervalMonths, &rule.DefaultPayerID,
			&splitType, &rule.IsActive, &startDate, &endDate, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rule.CategoryID = stringPtr(categoryID)
		rule.DefaultAmount = intPtr(defaultAmount)
		rule.SplitType = models.SplitType(splitType)
		rule.CreatedAt = time.Unix(createdAt, 0).UTC()
		if rule.StartDate, err = parseDate("start_date", startDate); err != nil {
			return nil, err
		}
		if rule.EndDate, err = datePtr("end_date", endDate); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	rows.Close()

	for i := range rules {
		splits, err := q.ruleSplits(ctx, rules[i].ID)
		if err != nil {
			return nil, err
		}
		rules[i].Splits = splits
	}

	return rules, nil
}

func (q *queries) ruleSplits(ctx context.Context, ruleID string) ([]models.RuleSplit, error) {
	rows, err := q.q.QueryContext(ctx,
		"SELECT user_id, amount, percentage FROM rule_splits WHERE rule_id = ? ORDER BY position",
		ruleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule splits: %w", err)
	}
	defer rows.Close()

	var splits []models.RuleSplit
	for rows.Next() {
		var (
			split  models.RuleSplit
			amount sql.NullInt64
			pct    decimal.NullDecimal
		)
		if err := rows.Scan(&split.UserID, &amount, &pct); err != nil {
			return nil, fmt.Errorf("failed to scan rule split: %w", err)
		}
		split.Amount = intPtr(amount)
		if pct.Valid {
			p := pct.Decimal
			split.Percentage = &p
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rule splits: %w", err)
	}

	return splits, nil
}
