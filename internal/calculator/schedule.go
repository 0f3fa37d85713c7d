package calculator

import (
	"time"

	"github.com/mmynk/settleup/internal/models"
)

// Recurrence is the scheduling part of a recurring rule.
type Recurrence struct {
	Anchor         time.Time // month the cycle is counted from
	IntervalMonths int
	DayOfMonth     int        // 1-31, 31 = last day of month
	StartDate      time.Time  // zero = no lower bound
	EndDate        *time.Time // nil = open-ended
}

// RecurrenceOf extracts the schedule of a rule. The anchor is the rule's creation date.
func RecurrenceOf(rule *models.RecurringRule) Recurrence {
	return Recurrence{
		Anchor:         rule.CreatedAt,
		IntervalMonths: rule.IntervalMonths,
		DayOfMonth:     rule.DayOfMonth,
		StartDate:      rule.StartDate,
		EndDate:        rule.EndDate,
	}
}

// ShouldRuleFireInMonth reports whether a rule anchored at anchor fires in
// the given year and month (1-12).
func ShouldRuleFireInMonth(anchor time.Time, intervalMonths, year, month int) bool {
	if intervalMonths < 1 || month < 1 || month > 12 {
		return false
	}
	monthsDiff := (year-anchor.Year())*12 + (month - int(anchor.Month()))
	return monthsDiff >= 0 && monthsDiff%intervalMonths == 0
}

// LastDayOfMonth returns the number of days in the month.
func LastDayOfMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ActualDayOfMonth clamps day to the length of the month, so 31 lands on
// Feb 28 (or 29 in leap years).
func ActualDayOfMonth(day, year, month int) int {
	if day < 1 {
		day = 1
	}
	return min(day, LastDayOfMonth(year, month))
}

// RuleDatesInPeriod returns, in chronological order, every date the rule
// fires within [periodStart, periodEnd] inclusive. Bounds are compared as
// date strings so a time-of-day on either bound never excludes its own day.
func RuleDatesInPeriod(r Recurrence, periodStart, periodEnd time.Time) []time.Time {
	from, to := models.FormatDate(periodStart), models.FormatDate(periodEnd)
	if from > to {
		return nil
	}

	var dates []time.Time
	year, month := periodStart.Year(), int(periodStart.Month())
	endYear, endMonth := periodEnd.Year(), int(periodEnd.Month())

	for year < endYear || (year == endYear && month <= endMonth) {
		if ShouldRuleFireInMonth(r.Anchor, r.IntervalMonths, year, month) {
			date := models.Date(year, time.Month(month), ActualDayOfMonth(r.DayOfMonth, year, month))
			if r.inBounds(models.FormatDate(date), from, to) {
				dates = append(dates, date)
			}
		}

		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return dates
}

func (r Recurrence) inBounds(day, from, to string) bool {
	if day < from || day > to {
		return false
	}
	if !r.StartDate.IsZero() && day < models.FormatDate(r.StartDate) {
		return false
	}
	if r.EndDate != nil && day > models.FormatDate(*r.EndDate) {
		return false
	}
	return true
}
