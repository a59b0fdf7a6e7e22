package util

import "time"

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextDueDate returns the next occurrence of paymentDay on or after the given
// date, handling months with fewer days (e.g., day 31 in February clamps to
// Feb 28/29). Used to project the next bill or EMI due date.
func NextDueDate(from time.Time, paymentDay int) time.Time {
	candidate := clampedDate(from.Year(), from.Month(), paymentDay)
	if candidate.Before(truncateDay(from)) {
		next := from.AddDate(0, 1, 0)
		candidate = clampedDate(next.Year(), next.Month(), paymentDay)
	}
	return candidate
}

// clampedDate builds a date, pulling the day back to the month's last day
// when the month is too short.
func clampedDate(year int, month time.Month, day int) time.Time {
	// last day of month is day 0 of the next month
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
