package model

import (
	"fmt"
	"time"
)

// MonthYearLayout renders labels like "March 2025".
const MonthYearLayout = "January 2006"

// MonthYearLabel returns the billing label for the month containing t.
func MonthYearLabel(t time.Time) string {
	return t.Format(MonthYearLayout)
}

// ParseMonthYear validates a billing label and returns the first day of that month.
func ParseMonthYear(label string) (time.Time, error) {
	t, err := time.Parse(MonthYearLayout, label)
	if err != nil {
		return time.Time{}, fmt.Errorf("month must look like %q: %w", "March 2025", err)
	}
	return t, nil
}

// RecentMonths lists the month containing now and the n-1 months before it,
// newest first.
func RecentMonths(now time.Time, n int) []string {
	if n < 1 {
		n = 1
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]string, 0, n)
	for i := 0; i < n; i++ {
		months = append(months, MonthYearLabel(first.AddDate(0, -i, 0)))
	}
	return months
}
