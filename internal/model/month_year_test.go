package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentMonths(t *testing.T) {
	now := time.Date(2025, time.March, 31, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"March 2025", "February 2025", "January 2025"}, RecentMonths(now, 3))

	newYear := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"January 2026", "December 2025"}, RecentMonths(newYear, 2))
	assert.Len(t, RecentMonths(newYear, 0), 1)
}

func TestParseMonthYear(t *testing.T) {
	got, err := ParseMonthYear("March 2025")
	require.NoError(t, err)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 2025, got.Year())

	for _, bad := range []string{"", "Mar 2025", "2025-03", "march 2025x"} {
		_, err := ParseMonthYear(bad)
		assert.Error(t, err, bad)
	}
}
