package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func TestEstimateDelivery(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		days  int
		want  time.Time
	}{
		{"drafting default", Date(2026, 1, 1), 45, Date(2026, 2, 15)},
		{"year rollover", Date(2025, 12, 20), 14, Date(2026, 1, 3)},
		{"leap day", Date(2028, 2, 28), 1, Date(2028, 2, 29)},
		{"zero days", Date(2026, 5, 5), 0, Date(2026, 5, 5)},
		{"time of day ignored", time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC), 45, Date(2026, 2, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateDelivery(tt.start, tt.days)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, EstimateDelivery(tt.start, tt.days))
		})
	}
}

func TestUrgencyForDays(t *testing.T) {
	assert.Equal(t, UrgencyOverdue, UrgencyForDays(-1))
	assert.Equal(t, UrgencyUrgent, UrgencyForDays(0))
	assert.Equal(t, UrgencyUrgent, UrgencyForDays(7))
	assert.Equal(t, UrgencyNormal, UrgencyForDays(8))
}

func TestDeliveryScheduler_DaysRemaining(t *testing.T) {
	eastern := time.FixedZone("EST", -5*60*60)
	// 22:00 on March 10 in the practice's zone, already March 11 in UTC.
	now := time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC)
	s := NewDeliveryScheduler(fixedClock(now), eastern)

	require.Equal(t, Date(2026, 3, 10), s.Today())

	tests := []struct {
		name     string
		delivery time.Time
		days     int
		urgency  Urgency
	}{
		{"seven days out", Date(2026, 3, 17), 7, UrgencyUrgent},
		{"eight days out", Date(2026, 3, 18), 8, UrgencyNormal},
		{"due today", Date(2026, 3, 10), 0, UrgencyUrgent},
		{"one day late", Date(2026, 3, 9), -1, UrgencyOverdue},
		{"time of day ignored", time.Date(2026, 3, 17, 18, 30, 0, 0, time.UTC), 7, UrgencyUrgent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.days, s.DaysRemaining(tt.delivery))
			assert.Equal(t, tt.urgency, s.UrgencyOf(tt.delivery))
		})
	}
}

func TestNewDeliveryScheduler_Defaults(t *testing.T) {
	s := NewDeliveryScheduler(nil, nil)
	assert.WithinDuration(t, time.Now(), s.Now(), time.Minute)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-01")
	require.NoError(t, err)
	assert.Equal(t, Date(2026, 1, 1), d)
	assert.Equal(t, "2026-01-01", FormatDate(d))

	_, err = ParseDate("01/02/2026")
	assert.True(t, IsValidation(err))

	_, err = ParseDate("2026-02-30")
	assert.True(t, IsValidation(err))
}
