package policy

import (
	"errors"
	"strings"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	DefaultCutoffHour = 6
)

var (
	ErrInvalidDate  = errors.New("invalid date, expected YYYY-MM-DD")
	ErrPastDate     = errors.New("date is in the past")
	ErrCutoffPassed = errors.New("cutoff time has passed")
)

// Cutoff decides whether a meal on a given calendar date can still be changed.
//
// The deadline is Hour:00 local time on the date itself. Dates are calendar
// dates in Location, never instants.
type Cutoff struct {
	Location *time.Location
	Hour     int
}

func NewCutoff(loc *time.Location) Cutoff {
	if loc == nil {
		loc = time.Local
	}
	return Cutoff{Location: loc, Hour: DefaultCutoffHour}
}

// ParseDate parses YYYY-MM-DD as midnight in the policy location.
func (c Cutoff) ParseDate(v string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(v), c.Location)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// CutoffFor returns the deadline instant for date.
func (c Cutoff) CutoffFor(date time.Time) time.Time {
	y, m, d := date.In(c.Location).Date()
	return time.Date(y, m, d, c.Hour, 0, 0, 0, c.Location)
}

// Check returns ErrPastDate if date is before today, ErrCutoffPassed if date
// is today and now is at or after the deadline, nil otherwise.
func (c Cutoff) Check(date, now time.Time) error {
	local := now.In(c.Location)
	ty, tm, td := local.Date()
	today := time.Date(ty, tm, td, 0, 0, 0, 0, c.Location)

	y, m, d := date.In(c.Location).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, c.Location)

	if day.Before(today) {
		return ErrPastDate
	}
	if day.Equal(today) && !local.Before(c.CutoffFor(day)) {
		return ErrCutoffPassed
	}
	return nil
}

func (c Cutoff) IsEligible(date, now time.Time) bool {
	return c.Check(date, now) == nil
}

// Passed reports whether a stored cutoff instant is no longer actionable.
// Stored requests are always judged by the instant captured at creation.
func Passed(cutoff, now time.Time) bool {
	return !now.Before(cutoff)
}
