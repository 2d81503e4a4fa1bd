package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"kiosk/kiosk/model"
)

type taskTable struct {
	Tasks  []model.Task `json:"tasks"`
	NextID uint32       `json:"next_id"`
}

type historyTable struct {
	Records []model.CompletionRecord `json:"records"`
	NextID  uint32                   `json:"next_id"`
}

type tables struct {
	tasks   taskTable
	history historyTable
}

func (t tables) clone() tables {
	return tables{
		tasks:   taskTable{Tasks: slices.Clone(t.tasks.Tasks), NextID: t.tasks.NextID},
		history: historyTable{Records: slices.Clone(t.history.Records), NextID: t.history.NextID},
	}
}

func (t *tables) taskIndex(id uint32) int {
	return slices.IndexFunc(t.tasks.Tasks, func(x model.Task) bool { return x.ID == id })
}

func (t *tables) lastCompletion(id uint32) *model.CompletionRecord {
	var last *model.CompletionRecord
	for i := range t.history.Records {
		r := &t.history.Records[i]
		if r.TaskID == id && (last == nil || r.CompletedAt > last.CompletedAt) {
			last = r
		}
	}
	return last
}

// Memory is a Store held entirely in RAM. It is safe for concurrent use.
type Memory struct {
	mu   sync.Mutex
	data tables

	// persist, when set, runs under the lock before a mutation is
	// committed. A failed persist leaves the store unchanged.
	persist func(tables) error
}

func NewMemory() *Memory {
	return &Memory{data: tables{
		tasks:   taskTable{NextID: 1},
		history: historyTable{NextID: 1},
	}}
}

// mutate applies fn to a copy of the tables and commits it if fn and the
// persist hook both succeed.
func (m *Memory) mutate(fn func(*tables) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.data.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if m.persist != nil {
		if err := m.persist(next); err != nil {
			return err
		}
	}
	m.data = next
	return nil
}

func (m *Memory) AllTasks(_ context.Context, sortByDue bool) ([]model.Task, error) {
	m.mu.Lock()
	out := slices.Clone(m.data.tasks.Tasks)
	m.mu.Unlock()
	SortTasks(out, sortByDue)
	return out, nil
}

func (m *Memory) Task(_ context.Context, id uint32) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.data.taskIndex(id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}
	return m.data.tasks.Tasks[i], nil
}

func (m *Memory) TasksByUrgency(ctx context.Context, filter string, today time.Time) ([]model.Task, error) {
	all, err := m.AllTasks(ctx, true)
	if err != nil {
		return nil, err
	}
	return FilterByUrgency(all, filter, today), nil
}

func (m *Memory) Counts(ctx context.Context, today time.Time) (model.Counts, error) {
	all, err := m.AllTasks(ctx, true)
	if err != nil {
		return model.Counts{}, err
	}
	return CountTasks(all, today), nil
}

func (m *Memory) History(_ context.Context, id uint32) ([]model.CompletionRecord, error) {
	m.mu.Lock()
	var out []model.CompletionRecord
	for _, r := range m.data.history.Records {
		if r.TaskID == id {
			out = append(out, r)
		}
	}
	m.mu.Unlock()
	return newestFirst(out), nil
}

func (m *Memory) Create(_ context.Context, n NewTask, now time.Time) (model.Task, error) {
	if err := n.Validate(); err != nil {
		return model.Task{}, err
	}
	var created model.Task
	err := m.mutate(func(t *tables) error {
		ts := Timestamp(now)
		created = model.Task{
			ID:              t.tasks.NextID,
			Name:            n.Name,
			Recurrence:      n.Recurrence,
			RecurrenceValue: n.RecurrenceValue,
			NextDue:         n.NextDue.Format(model.DateLayout),
			CreatedAt:       ts,
			UpdatedAt:       ts,
		}
		t.tasks.NextID++
		t.tasks.Tasks = append(t.tasks.Tasks, created)
		return nil
	})
	return created, err
}

func (m *Memory) Update(_ context.Context, id uint32, p TaskPatch, now time.Time) (model.Task, error) {
	var updated model.Task
	err := m.mutate(func(t *tables) error {
		i := t.taskIndex(id)
		if i < 0 {
			return ErrNotFound
		}
		updated = p.Apply(t.tasks.Tasks[i], now)
		t.tasks.Tasks[i] = updated
		return nil
	})
	return updated, err
}

func (m *Memory) Complete(_ context.Context, id uint32, now time.Time) error {
	return m.mutate(func(t *tables) error {
		i := t.taskIndex(id)
		if i < 0 {
			return ErrNotFound
		}
		rec := model.CompletionRecord{
			ID:            t.history.NextID,
			TaskID:        id,
			CompletedAt:   Timestamp(now),
			DaysSinceLast: daysSince(t.lastCompletion(id), now),
		}
		t.history.NextID++
		t.history.Records = append(t.history.Records, rec)
		t.tasks.Tasks[i] = Advance(t.tasks.Tasks[i], now)
		return nil
	})
}

func (m *Memory) Delete(_ context.Context, id uint32) error {
	return m.mutate(func(t *tables) error {
		i := t.taskIndex(id)
		if i < 0 {
			return ErrNotFound
		}
		t.tasks.Tasks = slices.Delete(t.tasks.Tasks, i, i+1)
		t.history.Records = slices.DeleteFunc(t.history.Records, func(r model.CompletionRecord) bool {
			return r.TaskID == id
		})
		return nil
	})
}
