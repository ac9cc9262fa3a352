package entity

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used on the wire and in storage
const DateLayout = "2006-01-02"

// MinYear is the earliest year a leave date may fall in
const MinYear = 1900

// DateRange is an inclusive range of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange truncates both ends to calendar days in UTC
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: truncateDay(start), End: truncateDay(end)}
}

// ParseDate parses one DateLayout string; field names it in errors
func ParseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s date %q: %v", ErrValidation, field, value, err)
	}
	if d.Year() < MinYear {
		return time.Time{}, fmt.Errorf("%w: %s date %q is before %d", ErrValidation, field, value, MinYear)
	}
	return d, nil
}

// ParseDateRange parses two DateLayout strings
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate("start", start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate("end", end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e), nil
}

// Validate rejects inverted or unset ranges
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if r.Start.Year() < MinYear || r.End.Year() < MinYear {
		return fmt.Errorf("%w: dates before %d are not accepted", ErrValidation, MinYear)
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrValidation, r.StartString(), r.EndString())
	}
	return nil
}

// Days returns the number of calendar days covered, both ends included
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Overlaps reports whether two inclusive ranges share at least one day
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !other.Start.After(r.End)
}

// StartString formats the start day
func (r DateRange) StartString() string {
	return r.Start.Format(DateLayout)
}

// EndString formats the end day
func (r DateRange) EndString() string {
	return r.End.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
