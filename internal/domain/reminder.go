package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UpcomingWindowDays is the look-ahead window for upcoming bill reminders.
const UpcomingWindowDays = 7

// ReminderNotice aggregates overdue and upcoming unpaid bills into a single
// user-facing notice.
type ReminderNotice struct {
	OverdueCount  int             `json:"overdueCount"`
	OverdueTotal  decimal.Decimal `json:"overdueTotal"`
	UpcomingCount int             `json:"upcomingCount"`
	UpcomingTotal decimal.Decimal `json:"upcomingTotal"`
	Message       string          `json:"message"`
}

// SummarizeDueBills partitions unpaid bills into overdue (due before today)
// and upcoming (due within the next seven days, today inclusive). The notice
// carries counts and totals only; no message, no suppression.
func SummarizeDueBills(today time.Time, unpaid []*Bill) *ReminderNotice {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	windowEnd := day.AddDate(0, 0, UpcomingWindowDays)

	notice := &ReminderNotice{
		OverdueTotal:  decimal.Zero,
		UpcomingTotal: decimal.Zero,
	}
	for _, b := range unpaid {
		due := time.Date(b.DueDate.Year(), b.DueDate.Month(), b.DueDate.Day(), 0, 0, 0, 0, time.UTC)
		switch {
		case due.Before(day):
			notice.OverdueCount++
			notice.OverdueTotal = notice.OverdueTotal.Add(b.Amount)
		case !due.After(windowEnd):
			notice.UpcomingCount++
			notice.UpcomingTotal = notice.UpcomingTotal.Add(b.Amount)
		}
	}
	return notice
}

// EvaluateReminders summarizes due bills and decides whether a notice should
// be surfaced.
//
// A notice fires only when lastReminderDate differs from today OR daily mode
// is disabled. The second arm means disabling daily mode fires a notice on
// every evaluation; that matches the behavior this evaluator replaces and is
// kept deliberately.
//
// The caller stamps state.LastReminderDate with today when a notice is
// returned.
func EvaluateReminders(today time.Time, unpaid []*Bill, lastReminderDate string, dailyEnabled bool) *ReminderNotice {
	notice := SummarizeDueBills(today, unpaid)
	if notice.OverdueCount == 0 && notice.UpcomingCount == 0 {
		return nil
	}
	if lastReminderDate == DateStamp(today) && dailyEnabled {
		return nil
	}

	var parts []string
	if notice.OverdueCount > 0 {
		parts = append(parts, fmt.Sprintf("You have %d overdue bill(s) totaling %s",
			notice.OverdueCount, notice.OverdueTotal.StringFixed(2)))
	}
	if notice.UpcomingCount > 0 {
		parts = append(parts, fmt.Sprintf("You have %d upcoming bill(s) due within %d days totaling %s",
			notice.UpcomingCount, UpcomingWindowDays, notice.UpcomingTotal.StringFixed(2)))
	}
	notice.Message = strings.Join(parts, " | ")
	return notice
}
