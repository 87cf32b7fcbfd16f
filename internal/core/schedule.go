package core

import "time"

// NextPayment returns the first payment date after start for the given
// cycle: one calendar month later for monthly, one year for yearly.
func NextPayment(start Date, cycle Cycle) Date {
	if cycle == Yearly {
		return Date{Time: start.AddDate(1, 0, 0)}
	}
	return Date{Time: start.AddDate(0, 1, 0)}
}

// DaysUntil counts whole days from now to d, negative when d is past.
// Both sides are truncated to midnight so time-of-day never leaks into
// the urgency display.
func DaysUntil(d Date, now time.Time) int {
	target := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today) / (24 * time.Hour))
}
