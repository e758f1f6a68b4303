package domain

import (
	"strconv"
	"strings"
	"time"
)

// ScheduleMode selects how a delivery date is set.
type ScheduleMode string

const (
	// ScheduleByDays derives the estimate from start date plus days.
	ScheduleByDays ScheduleMode = "days"
	// ScheduleByDate sets the estimate directly, overriding the derivation
	// until the next different day count.
	ScheduleByDate ScheduleMode = "date"
)

// DeliverySchedule is exactly one of a day count (nil clears the
// timeline) or an explicit date with an optional annotation.
type DeliverySchedule struct {
	Mode       ScheduleMode
	Days       *int
	Date       *time.Time
	Annotation *Annotation
}

// ScheduleDays builds a days-mode schedule.
func ScheduleDays(days *int) DeliverySchedule {
	return DeliverySchedule{Mode: ScheduleByDays, Days: days}
}

// ScheduleDate builds a date-mode schedule.
func ScheduleDate(date time.Time, a *Annotation) DeliverySchedule {
	return DeliverySchedule{Mode: ScheduleByDate, Date: &date, Annotation: a}
}

// Validate checks that exactly the fields of the chosen mode are set.
func (s DeliverySchedule) Validate() error {
	switch s.Mode {
	case ScheduleByDays:
		if s.Date != nil {
			return NewValidationError("date", "not allowed in days mode")
		}
		if s.Days != nil && *s.Days < 0 {
			return NewValidationError("days", "must not be negative")
		}
	case ScheduleByDate:
		if s.Days != nil {
			return NewValidationError("days", "not allowed in date mode")
		}
		if s.Date == nil || s.Date.IsZero() {
			return NewValidationError("date", "is required in date mode")
		}
	default:
		return NewValidationError("mode", `must be "days" or "date"`)
	}
	return nil
}

// ParseDeliverySchedule reads the wire form {mode, value}. An empty value in
// days mode clears the timeline.
func ParseDeliverySchedule(mode, value string) (DeliverySchedule, error) {
	value = strings.TrimSpace(value)
	switch ScheduleMode(strings.ToLower(strings.TrimSpace(mode))) {
	case ScheduleByDays:
		if value == "" {
			return ScheduleDays(nil), nil
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return DeliverySchedule{}, NewValidationError("days", "must be a whole number")
		}
		s := ScheduleDays(&n)
		return s, s.Validate()
	case ScheduleByDate:
		d, err := ParseDate(value)
		if err != nil {
			return DeliverySchedule{}, err
		}
		return ScheduleDate(d, nil), nil
	default:
		return DeliverySchedule{}, NewValidationError("mode", `must be "days" or "date"`)
	}
}
