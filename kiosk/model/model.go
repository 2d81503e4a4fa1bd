package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk layout for due dates.
const DateLayout = "2006-01-02"

// displayLayout is the layout shown on task cards and history rows.
const displayLayout = "Jan 02, 2006"

// RecurrenceType selects how a task's next due date advances.
type RecurrenceType uint8

const (
	Daily RecurrenceType = iota
	Weekly
	Monthly
	Yearly
)

func (r RecurrenceType) String() string {
	switch r {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		return "unknown"
	}
}

func (r RecurrenceType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RecurrenceType) UnmarshalText(b []byte) error {
	v, ok := ParseRecurrence(string(b))
	if !ok {
		return fmt.Errorf("model: unknown recurrence %q", b)
	}
	*r = v
	return nil
}

// ParseRecurrence accepts the lowercase names produced by String.
func ParseRecurrence(s string) (RecurrenceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "days":
		return Daily, true
	case "weekly", "week", "weeks":
		return Weekly, true
	case "monthly", "month", "months":
		return Monthly, true
	case "yearly", "year", "years":
		return Yearly, true
	default:
		return Daily, false
	}
}

// Urgency buckets a task by days until due.
type Urgency uint8

const (
	Overdue Urgency = iota
	Today
	Tomorrow
	Week
	Upcoming
)

// UrgencyFromDays maps days-until-due onto an urgency bucket.
func UrgencyFromDays(days int) Urgency {
	switch {
	case days < 0:
		return Overdue
	case days == 0:
		return Today
	case days == 1:
		return Tomorrow
	case days <= 7:
		return Week
	default:
		return Upcoming
	}
}

func (u Urgency) String() string {
	switch u {
	case Overdue:
		return "overdue"
	case Today:
		return "today"
	case Tomorrow:
		return "tomorrow"
	case Week:
		return "week"
	default:
		return "upcoming"
	}
}

// Label is the uppercase badge text drawn on task cards.
func (u Urgency) Label() string {
	switch u {
	case Overdue:
		return "OVERDUE"
	case Today:
		return "TODAY"
	case Tomorrow:
		return "TOMORROW"
	case Week:
		return "THIS WEEK"
	default:
		return "UPCOMING"
	}
}

// Dashboard filters. The empty string means "all tasks".
const (
	FilterOverdue = "overdue"
	FilterToday   = "today"
	FilterWeek    = "week"
)

// Task is a recurring chore.
type Task struct {
	ID              uint32         `json:"id"`
	Name            string         `json:"name"`
	Recurrence      RecurrenceType `json:"recurrence_type"`
	RecurrenceValue uint32         `json:"recurrence_value"`
	NextDue         string         `json:"next_due_date"`
	CreatedAt       string         `json:"created_at"`
	UpdatedAt       string         `json:"updated_at"`
}

// DueDate parses NextDue.
func (t Task) DueDate() (time.Time, bool) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(t.NextDue))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DaysUntilDue returns whole days from today to the due date, or 0 when the
// due date does not parse.
func (t Task) DaysUntilDue(today time.Time) int {
	due, ok := t.DueDate()
	if !ok {
		return 0
	}
	return DaysBetween(today, due)
}

func (t Task) Urgency(today time.Time) Urgency {
	return UrgencyFromDays(t.DaysUntilDue(today))
}

// FormattedDue renders the due date as "Jan 02, 2006".
func (t Task) FormattedDue() string {
	due, ok := t.DueDate()
	if !ok {
		return t.NextDue
	}
	return due.Format(displayLayout)
}

// CompletionRecord is one entry in a task's history.
type CompletionRecord struct {
	ID            uint32 `json:"id"`
	TaskID        uint32 `json:"task_id"`
	CompletedAt   string `json:"completed_at"`
	DaysSinceLast *int   `json:"days_since_last"`
}

// CompletedDate parses the date part of CompletedAt.
func (r CompletionRecord) CompletedDate() (time.Time, bool) {
	s, _, _ := strings.Cut(r.CompletedAt, "T")
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func (r CompletionRecord) FormattedDate() string {
	d, ok := r.CompletedDate()
	if !ok {
		return r.CompletedAt
	}
	return d.Format(displayLayout)
}

// Counts is the dashboard summary.
type Counts struct {
	Overdue uint32
	Today   uint32
	Week    uint32
	Total   uint32
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the calendar-day difference to-from.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// NextDue advances from by one recurrence period. Months are 30 days and
// years are 365 days.
func NextDue(from time.Time, typ RecurrenceType, value uint32) time.Time {
	n := int(value)
	switch typ {
	case Weekly:
		return from.AddDate(0, 0, 7*n)
	case Monthly:
		return from.AddDate(0, 0, 30*n)
	case Yearly:
		return from.AddDate(0, 0, 365*n)
	default:
		return from.AddDate(0, 0, n)
	}
}
