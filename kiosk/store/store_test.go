package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kiosk/kiosk/model"
	"kiosk/kiosk/store"
	"kiosk/kiosk/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return store.NewMemory() })
}

func TestJSONFile(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := store.OpenJSON(t.TempDir())
		require.NoError(t, err)
		return s
	})
}

func TestJSONFileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := store.OpenJSON(dir)
	require.NoError(t, err)
	task, err := s.Create(ctx, store.NewTask{
		Name:            "Descale kettle",
		Recurrence:      model.Monthly,
		RecurrenceValue: 2,
		NextDue:         storetest.Today,
	}, storetest.Today)
	require.NoError(t, err)
	require.NoError(t, s.Complete(ctx, task.ID, storetest.Today))

	reopened, err := store.OpenJSON(dir)
	require.NoError(t, err)
	got, err := reopened.Task(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "2026-05-09", got.NextDue)

	hist, err := reopened.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)

	next, err := reopened.Create(ctx, store.NewTask{
		Name:            "Another",
		RecurrenceValue: 1,
		NextDue:         storetest.Today,
	}, storetest.Today)
	require.NoError(t, err)
	require.Greater(t, next.ID, task.ID)
}

func TestJSONFileFormat(t *testing.T) {
	dir := t.TempDir()
	tasks := `{"tasks":[{"id":4,"name":"Trash","recurrence_type":"weekly","recurrence_value":1,` +
		`"next_due_date":"2026-03-12","created_at":"","updated_at":""}],"next_id":0}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.TasksFile), []byte(tasks), 0o644))

	s, err := store.OpenJSON(dir)
	require.NoError(t, err)
	all, err := s.AllTasks(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, model.Weekly, all[0].Recurrence)

	created, err := s.Create(context.Background(), store.NewTask{
		Name:            "Laundry",
		RecurrenceValue: 3,
		NextDue:         storetest.Today,
	}, storetest.Today)
	require.NoError(t, err)
	require.Equal(t, uint32(5), created.ID)

	raw, err := os.ReadFile(filepath.Join(dir, store.TasksFile))
	require.NoError(t, err)
	var decoded struct {
		Tasks  []map[string]any `json:"tasks"`
		NextID uint32           `json:"next_id"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Tasks, 2)
	require.Equal(t, uint32(6), decoded.NextID)
	require.Equal(t, "daily", decoded.Tasks[1]["recurrence_type"])
}

func TestJSONFileRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.HistoryFile), []byte("{nope"), 0o644))
	_, err := store.OpenJSON(dir)
	require.Error(t, err)
}

func TestFilterByUrgencyUnparseableDueDate(t *testing.T) {
	tasks := []model.Task{{Name: "odd", NextDue: "someday"}}
	// Unparseable dates count as due today.
	require.Len(t, store.FilterByUrgency(tasks, model.FilterToday, storetest.Today), 1)
	require.Equal(t, model.Counts{Today: 1, Week: 1, Total: 1}, store.CountTasks(tasks, storetest.Today))
}

func TestJSONFileReloadSeesOtherWriter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kiosk, err := store.OpenJSON(dir)
	require.NoError(t, err)
	cli, err := store.OpenJSON(dir)
	require.NoError(t, err)

	created, err := cli.Create(ctx, store.NewTask{
		Name:            "Water plants",
		Recurrence:      model.Weekly,
		RecurrenceValue: 1,
		NextDue:         storetest.Today,
	}, storetest.Today)
	require.NoError(t, err)

	all, err := kiosk.AllTasks(ctx, true)
	require.NoError(t, err)
	require.Empty(t, all)

	var _ store.Reloader = kiosk
	require.NoError(t, kiosk.Reload())
	all, err = kiosk.AllTasks(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, created.ID, all[0].ID)

	// A write after reload must not clobber the other writer's task.
	_, err = kiosk.Create(ctx, store.NewTask{Name: "Dust", RecurrenceValue: 2, NextDue: storetest.Today}, storetest.Today)
	require.NoError(t, err)
	again, err := store.OpenJSON(dir)
	require.NoError(t, err)
	all, err = again.AllTasks(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
