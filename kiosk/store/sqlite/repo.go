// Package sqlite is a store.Store backed by an SQLite database. It is used
// on hosts, where the kiosk shares its database with the management tools.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"kiosk/kiosk/model"
	"kiosk/kiosk/store"
)

const driverName = "sqlite"

// Repository implements store.Store.
type Repository struct {
	db *sql.DB
}

var _ store.Store = (*Repository)(nil)

// Open opens or creates the database at path and migrates it.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open memory: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			recurrence_type TEXT NOT NULL,
			recurrence_value INTEGER NOT NULL,
			next_due_date TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS completion_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id INTEGER NOT NULL,
			completed_at TEXT NOT NULL,
			days_since_last INTEGER,
			FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_next_due ON tasks(next_due_date);`,
		`CREATE INDEX IF NOT EXISTS idx_history_task_completed ON completion_history(task_id, completed_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

const taskColumns = `id, name, recurrence_type, recurrence_value, next_due_date, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var (
		t   model.Task
		typ string
	)
	if err := s.Scan(&t.ID, &t.Name, &typ, &t.RecurrenceValue, &t.NextDue, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return model.Task{}, err
	}
	if err := t.Recurrence.UnmarshalText([]byte(typ)); err != nil {
		return model.Task{}, fmt.Errorf("sqlite: task %d: %w", t.ID, err)
	}
	return t, nil
}

func (r *Repository) AllTasks(ctx context.Context, sortByDue bool) ([]model.Task, error) {
	order := "name ASC, id ASC"
	if sortByDue {
		order = "next_due_date ASC, id ASC"
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY `+order)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list tasks: %w", err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) Task(ctx context.Context, id uint32) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, store.ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("sqlite: get task %d: %w", id, err)
	}
	return t, nil
}

func (r *Repository) TasksByUrgency(ctx context.Context, filter string, today time.Time) ([]model.Task, error) {
	all, err := r.AllTasks(ctx, true)
	if err != nil {
		return nil, err
	}
	return store.FilterByUrgency(all, filter, today), nil
}

func (r *Repository) Counts(ctx context.Context, today time.Time) (model.Counts, error) {
	all, err := r.AllTasks(ctx, true)
	if err != nil {
		return model.Counts{}, err
	}
	return store.CountTasks(all, today), nil
}

func (r *Repository) History(ctx context.Context, id uint32) ([]model.CompletionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, completed_at, days_since_last
		FROM completion_history
		WHERE task_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ?`, id, store.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history %d: %w", id, err)
	}
	defer rows.Close()

	var out []model.CompletionRecord
	for rows.Next() {
		var (
			rec   model.CompletionRecord
			since sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.TaskID, &rec.CompletedAt, &since); err != nil {
			return nil, err
		}
		if since.Valid {
			d := int(since.Int64)
			rec.DaysSinceLast = &d
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) Create(ctx context.Context, n store.NewTask, now time.Time) (model.Task, error) {
	if err := n.Validate(); err != nil {
		return model.Task{}, err
	}
	ts := store.Timestamp(now)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks(name, recurrence_type, recurrence_value, next_due_date, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)`,
		n.Name, n.Recurrence.String(), n.RecurrenceValue, n.NextDue.Format(model.DateLayout), ts, ts)
	if err != nil {
		return model.Task{}, fmt.Errorf("sqlite: create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, fmt.Errorf("sqlite: create task: %w", err)
	}
	return r.Task(ctx, uint32(id))
}

func (r *Repository) Update(ctx context.Context, id uint32, p store.TaskPatch, now time.Time) (model.Task, error) {
	t, err := r.Task(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	t = p.Apply(t, now)
	if err := r.writeTask(ctx, r.db, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *Repository) writeTask(ctx context.Context, db execer, t model.Task) error {
	_, err := db.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, recurrence_type = ?, recurrence_value = ?, next_due_date = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Recurrence.String(), t.RecurrenceValue, t.NextDue, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("sqlite: update task %d: %w", t.ID, err)
	}
	return nil
}

func (r *Repository) Complete(ctx context.Context, id uint32, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: complete %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlite: complete %d: %w", id, err)
	}

	var last sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT MAX(completed_at) FROM completion_history WHERE task_id = ?`, id).Scan(&last)
	if err != nil {
		return fmt.Errorf("sqlite: complete %d: %w", id, err)
	}
	var since any
	if last.Valid {
		prev := model.CompletionRecord{CompletedAt: last.String}
		if d, ok := prev.CompletedDate(); ok {
			since = model.DaysBetween(d, now)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO completion_history(task_id, completed_at, days_since_last)
		VALUES(?, ?, ?)`, id, store.Timestamp(now), since); err != nil {
		return fmt.Errorf("sqlite: complete %d: %w", id, err)
	}

	if next := store.Advance(t, now); next != t {
		if err := r.writeTask(ctx, tx, next); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: complete %d: %w", id, err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uint32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: delete %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM completion_history WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete %d history: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete %d: %w", id, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: delete %d: %w", id, err)
	}
	return nil
}
