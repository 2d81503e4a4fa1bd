package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kiosk/kiosk/model"
	"kiosk/kiosk/store"
	"kiosk/kiosk/store/storetest"
)

func TestRepositoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		repo, err := OpenInMemory()
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}

func TestRepositoryPersistsToDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kiosk.db")

	repo, err := Open(path)
	require.NoError(t, err)
	task, err := repo.Create(ctx, store.NewTask{
		Name:            "Smoke alarm test",
		Recurrence:      model.Monthly,
		RecurrenceValue: 1,
		NextDue:         storetest.Today,
	}, storetest.Today)
	require.NoError(t, err)
	require.NoError(t, repo.Complete(ctx, task.ID, storetest.Today))
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	got, err := repo.Task(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "2026-04-09", got.NextDue)

	hist, err := repo.History(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}
