package model

import (
	"fmt"
	"time"
)

// Period type identifiers as written in budget files.
const (
	PeriodLiteralMonth = "monthly"
	PeriodPaydateMonth = "paydate-monthly"
	PeriodYearly       = "yearly"
	PeriodCustom       = "custom"
)

// Period is the budgeting window. Start and End are both inclusive.
type Period interface {
	Type() string
	Start() time.Time
	End() time.Time
	String() string
}

// Contains reports whether t falls within the period.
func Contains(p Period, t time.Time) bool {
	return !t.Before(p.Start()) && !t.After(p.End())
}

// Elapsed reports whether the whole period lies before asOf.
func Elapsed(p Period, asOf time.Time) bool {
	return asOf.After(p.End())
}

// LiteralMonth runs from the first to the last day of a calendar month.
type LiteralMonth struct {
	Year  int
	Month time.Month
}

// Type implements Period.
func (LiteralMonth) Type() string { return PeriodLiteralMonth }

// Start implements Period.
func (p LiteralMonth) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.Local)
}

// End implements Period.
func (p LiteralMonth) End() time.Time {
	return endOfDay(p.Start().AddDate(0, 1, -1))
}

func (p LiteralMonth) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// PaydateMonth starts on the first Friday of the month and runs through the
// Thursday before the first Friday of the following month.
type PaydateMonth struct {
	Year  int
	Month time.Month
}

// Type implements Period.
func (PaydateMonth) Type() string { return PeriodPaydateMonth }

// Start implements Period.
func (p PaydateMonth) Start() time.Time {
	return firstFriday(p.Year, p.Month)
}

// End implements Period.
func (p PaydateMonth) End() time.Time {
	next := time.Date(p.Year, p.Month+1, 1, 0, 0, 0, 0, time.Local)
	return endOfDay(firstFriday(next.Year(), next.Month()).AddDate(0, 0, -1))
}

func (p PaydateMonth) String() string {
	return fmt.Sprintf("%s %d (paydate)", p.Month, p.Year)
}

// Yearly starts on the first Friday of January and runs through the Thursday
// before the first Friday of the next January.
type Yearly struct {
	Year int
}

// Type implements Period.
func (Yearly) Type() string { return PeriodYearly }

// Start implements Period.
func (p Yearly) Start() time.Time {
	return firstFriday(p.Year, time.January)
}

// End implements Period.
func (p Yearly) End() time.Time {
	return endOfDay(firstFriday(p.Year+1, time.January).AddDate(0, 0, -1))
}

func (p Yearly) String() string {
	return fmt.Sprintf("%d", p.Year)
}

// Custom is an arbitrary inclusive date range.
type Custom struct {
	From time.Time
	To   time.Time
}

// NewCustom creates a custom period, rejecting ranges that end before they start.
func NewCustom(from, to time.Time) (Custom, error) {
	if to.Before(from) {
		return Custom{}, fmt.Errorf("period ends (%s) before it starts (%s)",
			to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	return Custom{From: from, To: to}, nil
}

// Type implements Period.
func (Custom) Type() string { return PeriodCustom }

// Start implements Period.
func (p Custom) Start() time.Time {
	return time.Date(p.From.Year(), p.From.Month(), p.From.Day(), 0, 0, 0, 0, time.Local)
}

// End implements Period.
func (p Custom) End() time.Time {
	return endOfDay(p.To)
}

func (p Custom) String() string {
	return fmt.Sprintf("%s to %s", p.From.Format("2006-01-02"), p.To.Format("2006-01-02"))
}

func firstFriday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.Local)
}
