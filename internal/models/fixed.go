// ABOUTME: Fixed-point helpers for two-decimal quantities (kg, goal values).
// ABOUTME: Also defines the calendar Date type used by goals and progress entries.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FixedPlaces is the number of decimal places every stored quantity keeps.
const FixedPlaces = 2

// FitsFixed reports whether d has at most two decimal places and fewer than
// maxDigits significant digits in total, mirroring a DECIMAL(maxDigits, 2) column.
func FitsFixed(d decimal.Decimal, maxDigits int32) bool {
	if !d.Equal(d.Truncate(FixedPlaces)) {
		return false
	}
	limit := decimal.New(1, maxDigits-FixedPlaces)
	return d.Abs().LessThan(limit)
}

// ParseFixed parses a decimal string and rounds nothing; callers validate scale.
func ParseFixed(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}

const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component.
type Date struct {
	time.Time
}

// NewDate returns the Date for y-m-d in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}
