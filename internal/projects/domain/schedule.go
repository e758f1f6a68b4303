package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Dates in this package are calendar dates represented as midnight UTC.
// "Today" is the practice's calendar day, taken from the scheduler's clock
// in the practice time zone.

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// UrgentWindowDays is the last day count still classed as urgent.
const UrgentWindowDays = 7

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Date builds a calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CalendarDate is the calendar day of t in loc.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return Date(y, m, d)
}

// TruncateDate drops the time of day of a stored date.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return Date(y, m, d)
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, NewValidationError("date", fmt.Sprintf("%q is not a valid YYYY-MM-DD date", s))
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// EstimateDelivery adds calendar days to start. Month and year rollover are
// handled by time.Date normalisation, so the result depends only on the
// inputs.
func EstimateDelivery(start time.Time, timelineDays int) time.Time {
	y, m, d := start.UTC().Date()
	return Date(y, m, d+timelineDays)
}

// Urgency classifies a deadline.
type Urgency string

const (
	UrgencyOverdue Urgency = "overdue"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyNormal  Urgency = "normal"
)

// UrgencyForDays is the single rule every deadline badge uses.
func UrgencyForDays(daysRemaining int) Urgency {
	switch {
	case daysRemaining < 0:
		return UrgencyOverdue
	case daysRemaining <= UrgentWindowDays:
		return UrgencyUrgent
	default:
		return UrgencyNormal
	}
}

// DeliveryScheduler does deadline arithmetic against an injected clock.
type DeliveryScheduler struct {
	clock Clock
	loc   *time.Location
}

// NewDeliveryScheduler creates a scheduler. A nil clock is the system clock
// and a nil location is UTC.
func NewDeliveryScheduler(clock Clock, loc *time.Location) *DeliveryScheduler {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DeliveryScheduler{clock: clock, loc: loc}
}

// Now returns the clock's current instant.
func (s *DeliveryScheduler) Now() time.Time {
	return s.clock.Now()
}

// Today is the practice's current calendar date.
func (s *DeliveryScheduler) Today() time.Time {
	return CalendarDate(s.clock.Now(), s.loc)
}

// EstimateDelivery is EstimateDelivery; kept on the scheduler so callers
// need a single collaborator.
func (s *DeliveryScheduler) EstimateDelivery(start time.Time, timelineDays int) time.Time {
	return EstimateDelivery(start, timelineDays)
}

// DaysRemaining is the signed number of calendar days from today to
// delivery. Both sides are midnight, so time of day never matters.
func (s *DeliveryScheduler) DaysRemaining(delivery time.Time) int {
	diff := TruncateDate(delivery).Sub(s.Today())
	return int(math.Ceil(diff.Hours() / 24))
}

// UrgencyOf classifies delivery relative to today.
func (s *DeliveryScheduler) UrgencyOf(delivery time.Time) Urgency {
	return UrgencyForDays(s.DaysRemaining(delivery))
}
