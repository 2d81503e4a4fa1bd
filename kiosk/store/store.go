// Package store holds recurring tasks and their completion history.
//
// The navigation engine never calls a Store directly. The host loop maps
// action tokens onto these methods and pushes the results back into the
// navigator.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"kiosk/kiosk/model"
)

// ErrNotFound is returned when a task id does not exist.
var ErrNotFound = errors.New("store: not found")

// HistoryLimit caps the records returned by History.
const HistoryLimit = 50

// NewTask carries the fields of a task to create.
type NewTask struct {
	Name            string
	Recurrence      model.RecurrenceType
	RecurrenceValue uint32
	NextDue         time.Time
}

// Validate checks the fields a caller must supply.
func (n NewTask) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return errors.New("store: task name is required")
	}
	if n.RecurrenceValue == 0 {
		return fmt.Errorf("store: task %q: recurrence value must be positive", n.Name)
	}
	if n.NextDue.IsZero() {
		return fmt.Errorf("store: task %q: due date is required", n.Name)
	}
	return nil
}

// TaskPatch updates the non-nil fields of a task.
type TaskPatch struct {
	Name            *string
	Recurrence      *model.RecurrenceType
	RecurrenceValue *uint32
	NextDue         *time.Time
}

// Store is the task repository.
type Store interface {
	AllTasks(ctx context.Context, sortByDue bool) ([]model.Task, error)
	Task(ctx context.Context, id uint32) (model.Task, error)
	TasksByUrgency(ctx context.Context, filter string, today time.Time) ([]model.Task, error)
	Counts(ctx context.Context, today time.Time) (model.Counts, error)

	// History returns at most HistoryLimit records, newest first.
	History(ctx context.Context, id uint32) ([]model.CompletionRecord, error)

	Create(ctx context.Context, t NewTask, now time.Time) (model.Task, error)
	Update(ctx context.Context, id uint32, p TaskPatch, now time.Time) (model.Task, error)

	// Complete records a completion and advances the due date by one period
	// from the previous due date, keeping a fixed schedule.
	Complete(ctx context.Context, id uint32, now time.Time) error

	// Delete removes a task and its history.
	Delete(ctx context.Context, id uint32) error
}

// Reloader is implemented by stores whose backing files can change under
// them. Reload discards cached state.
type Reloader interface {
	Reload() error
}

// Timestamp formats now the way created_at and completed_at are stored.
// The offset of now is kept so the date part is the same calendar day
// model.Day(now) names.
func Timestamp(now time.Time) string {
	return now.Format(time.RFC3339)
}

// SortTasks orders tasks by due date, or by name when byDue is false.
func SortTasks(tasks []model.Task, byDue bool) {
	if byDue {
		sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].NextDue < tasks[j].NextDue })
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
}

// FilterByUrgency keeps the tasks matching a dashboard filter. The week
// filter includes overdue tasks; an unknown filter keeps everything.
func FilterByUrgency(tasks []model.Task, filter string, today time.Time) []model.Task {
	var keep func(days int) bool
	switch filter {
	case model.FilterOverdue:
		keep = func(d int) bool { return d < 0 }
	case model.FilterToday:
		keep = func(d int) bool { return d == 0 }
	case model.FilterWeek:
		keep = func(d int) bool { return d <= 7 }
	default:
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t.DaysUntilDue(today)) {
			out = append(out, t)
		}
	}
	return out
}

// CountTasks builds the dashboard summary. Overdue and today tasks also
// count toward the week.
func CountTasks(tasks []model.Task, today time.Time) model.Counts {
	c := model.Counts{Total: uint32(len(tasks))}
	for _, t := range tasks {
		d := t.DaysUntilDue(today)
		switch {
		case d < 0:
			c.Overdue++
			c.Week++
		case d == 0:
			c.Today++
			c.Week++
		case d <= 7:
			c.Week++
		}
	}
	return c
}

// newestFirst sorts records by completion time, newest first, and caps the
// result at HistoryLimit.
func newestFirst(records []model.CompletionRecord) []model.CompletionRecord {
	sort.SliceStable(records, func(i, j int) bool { return records[i].CompletedAt > records[j].CompletedAt })
	if len(records) > HistoryLimit {
		records = records[:HistoryLimit]
	}
	return records
}

// daysSince returns the whole days between the last completion and now, or
// nil when there is no parseable last completion.
func daysSince(last *model.CompletionRecord, now time.Time) *int {
	if last == nil {
		return nil
	}
	d, ok := last.CompletedDate()
	if !ok {
		return nil
	}
	n := model.DaysBetween(d, now)
	return &n
}

// Advance returns t with its due date moved one period forward. Tasks with
// an unparseable due date are returned unchanged.
func Advance(t model.Task, now time.Time) model.Task {
	due, ok := t.DueDate()
	if !ok {
		return t
	}
	t.NextDue = model.NextDue(due, t.Recurrence, t.RecurrenceValue).Format(model.DateLayout)
	t.UpdatedAt = Timestamp(now)
	return t
}

// Apply returns t with the patch applied and UpdatedAt set to now.
func (p TaskPatch) Apply(t model.Task, now time.Time) model.Task {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Recurrence != nil {
		t.Recurrence = *p.Recurrence
	}
	if p.RecurrenceValue != nil {
		t.RecurrenceValue = *p.RecurrenceValue
	}
	if p.NextDue != nil {
		t.NextDue = p.NextDue.Format(model.DateLayout)
	}
	t.UpdatedAt = Timestamp(now)
	return t
}
