// Package storetest checks that a store.Store implementation behaves like
// the kiosk expects.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kiosk/kiosk/model"
	"kiosk/kiosk/store"
)

// Today is the fixed calendar day the checks run against.
var Today = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func day(offset int) time.Time { return Today.AddDate(0, 0, offset) }

// Run exercises open()'s store. open must return an empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, open(t)) })
	t.Run("CountsAndFilters", func(t *testing.T) { testCountsAndFilters(t, open(t)) })
	t.Run("Sorting", func(t *testing.T) { testSorting(t, open(t)) })
	t.Run("CompleteKeepsSchedule", func(t *testing.T) { testComplete(t, open(t)) })
	t.Run("HistoryLimit", func(t *testing.T) { testHistoryLimit(t, open(t)) })
	t.Run("HistoryUsesLocalDay", func(t *testing.T) { testHistoryLocalDay(t, open(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, open(t)) })
	t.Run("DeleteRemovesHistory", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, open(t)) })
}

func mustCreate(t *testing.T, s store.Store, name string, typ model.RecurrenceType, every uint32, due time.Time) model.Task {
	t.Helper()
	task, err := s.Create(context.Background(), store.NewTask{
		Name:            name,
		Recurrence:      typ,
		RecurrenceValue: every,
		NextDue:         due,
	}, Today)
	require.NoError(t, err)
	return task
}

func testCreateAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	created := mustCreate(t, s, "Water plants", model.Weekly, 1, day(2))
	require.NotZero(t, created.ID)
	require.Equal(t, "2026-03-12", created.NextDue)
	require.Equal(t, store.Timestamp(Today), created.CreatedAt)

	got, err := s.Task(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	other := mustCreate(t, s, "Trash", model.Daily, 2, day(0))
	require.NotEqual(t, created.ID, other.ID)

	_, err = s.Create(ctx, store.NewTask{Name: " ", RecurrenceValue: 1, NextDue: Today}, Today)
	require.Error(t, err)
	_, err = s.Create(ctx, store.NewTask{Name: "x", NextDue: Today}, Today)
	require.Error(t, err)
}

func testCountsAndFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s, "late", model.Daily, 1, day(-3))
	mustCreate(t, s, "now", model.Daily, 1, day(0))
	mustCreate(t, s, "soon", model.Daily, 1, day(7))
	mustCreate(t, s, "later", model.Daily, 1, day(8))

	counts, err := s.Counts(ctx, Today)
	require.NoError(t, err)
	require.Equal(t, model.Counts{Overdue: 1, Today: 1, Week: 3, Total: 4}, counts)

	names := func(filter string) []string {
		tasks, err := s.TasksByUrgency(ctx, filter, Today)
		require.NoError(t, err)
		var out []string
		for _, task := range tasks {
			out = append(out, task.Name)
		}
		return out
	}
	require.Equal(t, []string{"late"}, names(model.FilterOverdue))
	require.Equal(t, []string{"now"}, names(model.FilterToday))
	require.Equal(t, []string{"late", "now", "soon"}, names(model.FilterWeek))
	require.Equal(t, []string{"late", "now", "soon", "later"}, names(""))
	require.Equal(t, []string{"late", "now", "soon", "later"}, names("total"))
}

func testSorting(t *testing.T, s store.Store) {
	ctx := context.Background()
	mustCreate(t, s, "b", model.Daily, 1, day(1))
	mustCreate(t, s, "c", model.Daily, 1, day(-1))
	mustCreate(t, s, "a", model.Daily, 1, day(5))

	byDue, err := s.AllTasks(ctx, true)
	require.NoError(t, err)
	require.Len(t, byDue, 3)
	require.Equal(t, []string{"c", "b", "a"}, []string{byDue[0].Name, byDue[1].Name, byDue[2].Name})

	byName, err := s.AllTasks(ctx, false)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, []string{byName[0].Name, byName[1].Name, byName[2].Name})
}

func testComplete(t *testing.T, s store.Store) {
	ctx := context.Background()
	task := mustCreate(t, s, "Filter", model.Monthly, 1, day(-2))

	require.NoError(t, s.Complete(ctx, task.ID, Today))
	got, err := s.Task(ctx, task.ID)
	require.NoError(t, err)
	// Next due is computed from the previous due date, not from today.
	require.Equal(t, day(28).Format(model.DateLayout), got.NextDue)

	require.NoError(t, s.Complete(ctx, task.ID, day(4)))
	hist, err := s.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Equal(t, store.Timestamp(day(4)), hist[0].CompletedAt)
	require.NotNil(t, hist[0].DaysSinceLast)
	require.Equal(t, 4, *hist[0].DaysSinceLast)
	require.Nil(t, hist[1].DaysSinceLast)
}

func testHistoryLimit(t *testing.T, s store.Store) {
	ctx := context.Background()
	task := mustCreate(t, s, "Daily", model.Daily, 1, Today)
	for i := 0; i < store.HistoryLimit+5; i++ {
		require.NoError(t, s.Complete(ctx, task.ID, day(i)))
	}
	hist, err := s.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, hist, store.HistoryLimit)
	require.Equal(t, store.Timestamp(day(store.HistoryLimit+4)), hist[0].CompletedAt)
}

func testHistoryLocalDay(t *testing.T, s store.Store) {
	ctx := context.Background()
	pst := time.FixedZone("PST", -8*60*60)
	task := mustCreate(t, s, "Evening walk", model.Daily, 1, Today)

	evening := time.Date(2026, 3, 10, 20, 0, 0, 0, pst)
	require.NoError(t, s.Complete(ctx, task.ID, evening))
	require.NoError(t, s.Complete(ctx, task.ID, evening.Add(time.Hour)))

	hist, err := s.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Equal(t, "Mar 10, 2026", hist[0].FormattedDate())
	got, ok := hist[0].CompletedDate()
	require.True(t, ok)
	require.Equal(t, model.Day(evening), got)
	require.NotNil(t, hist[0].DaysSinceLast)
	require.Equal(t, 0, *hist[0].DaysSinceLast)
}

func testUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	task := mustCreate(t, s, "Oil", model.Daily, 1, Today)

	name := "Oil change"
	typ := model.Yearly
	every := uint32(2)
	got, err := s.Update(ctx, task.ID, store.TaskPatch{Name: &name, Recurrence: &typ, RecurrenceValue: &every}, day(1))
	require.NoError(t, err)
	require.Equal(t, "Oil change", got.Name)
	require.Equal(t, model.Yearly, got.Recurrence)
	require.Equal(t, uint32(2), got.RecurrenceValue)
	require.Equal(t, task.NextDue, got.NextDue)
	require.Equal(t, store.Timestamp(day(1)), got.UpdatedAt)

	reread, err := s.Task(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, got, reread)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	keep := mustCreate(t, s, "keep", model.Daily, 1, Today)
	drop := mustCreate(t, s, "drop", model.Daily, 1, Today)
	require.NoError(t, s.Complete(ctx, drop.ID, Today))
	require.NoError(t, s.Complete(ctx, keep.ID, Today))

	require.NoError(t, s.Delete(ctx, drop.ID))
	_, err := s.Task(ctx, drop.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	hist, err := s.History(ctx, drop.ID)
	require.NoError(t, err)
	require.Empty(t, hist)

	hist, err = s.History(ctx, keep.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.Task(ctx, 99)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Complete(ctx, 99, Today), store.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, 99), store.ErrNotFound)
	_, err = s.Update(ctx, 99, store.TaskPatch{}, Today)
	require.ErrorIs(t, err, store.ErrNotFound)
}
