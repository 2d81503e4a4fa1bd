package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File names used by OpenJSON inside its directory.
const (
	TasksFile   = "tasks.json"
	HistoryFile = "history.json"
)

// JSONFile is a Memory store mirrored to two JSON files. Every mutation
// rewrites the affected files before it is committed in RAM.
type JSONFile struct {
	*Memory
	dir string

	// saved is what the files held after the last write, guarded by mu.
	saved tables
}

// OpenJSON loads the store from dir, creating the directory if needed.
// Missing files start empty.
func OpenJSON(dir string) (*JSONFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir %s: %w", dir, err)
	}
	data, err := loadTables(dir)
	if err != nil {
		return nil, err
	}
	m := NewMemory()
	m.data = data

	f := &JSONFile{Memory: m, dir: dir, saved: data.clone()}
	m.persist = func(next tables) error {
		if err := f.save(f.saved, next); err != nil {
			return err
		}
		f.saved = next.clone()
		return nil
	}
	return f, nil
}

// Reload re-reads both files, picking up writes made by another process.
func (f *JSONFile) Reload() error {
	data, err := loadTables(f.dir)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = data
	f.saved = data.clone()
	return nil
}

func loadTables(dir string) (tables, error) {
	t := tables{
		tasks:   taskTable{NextID: 1},
		history: historyTable{NextID: 1},
	}
	if err := readJSON(filepath.Join(dir, TasksFile), &t.tasks); err != nil {
		return tables{}, err
	}
	if err := readJSON(filepath.Join(dir, HistoryFile), &t.history); err != nil {
		return tables{}, err
	}
	fixNextIDs(&t)
	return t, nil
}

// Dir reports the directory holding the store files.
func (f *JSONFile) Dir() string { return f.dir }

func (f *JSONFile) save(prev, next tables) error {
	if !sameTasks(prev.tasks, next.tasks) {
		if err := writeJSON(filepath.Join(f.dir, TasksFile), next.tasks); err != nil {
			return err
		}
	}
	if !sameHistory(prev.history, next.history) {
		if err := writeJSON(filepath.Join(f.dir, HistoryFile), next.history); err != nil {
			return err
		}
	}
	return nil
}

func sameTasks(a, b taskTable) bool {
	if a.NextID != b.NextID || len(a.Tasks) != len(b.Tasks) {
		return false
	}
	for i := range a.Tasks {
		if a.Tasks[i] != b.Tasks[i] {
			return false
		}
	}
	return true
}

func sameHistory(a, b historyTable) bool {
	return a.NextID == b.NextID && len(a.Records) == len(b.Records)
}

// fixNextIDs keeps ids unique when files were edited by hand or written
// with a zero next_id.
func fixNextIDs(t *tables) {
	for _, x := range t.tasks.Tasks {
		if x.ID >= t.tasks.NextID {
			t.tasks.NextID = x.ID + 1
		}
	}
	for _, r := range t.history.Records {
		if r.ID >= t.history.NextID {
			t.history.NextID = r.ID + 1
		}
	}
	if t.tasks.NextID == 0 {
		t.tasks.NextID = 1
	}
	if t.history.NextID == 0 {
		t.history.NextID = 1
	}
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read %s: %w", path, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", path, err)
	}
	return nil
}

// writeJSON replaces path atomically through a temp file in the same
// directory.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}
