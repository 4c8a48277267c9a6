package repository

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"livetodo/internal/model"
)

// SQLiteStore — хранилище в локальном файле базы. Схему создаём сами при
// открытии, никаких миграций кроме начальной.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		_ = os.MkdirAll(filepath.Dir(path), 0o755)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			title      TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) List() ([]*model.Task, error) {
	rows, err := s.db.Query(`SELECT id, title, created_at, updated_at FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		var r model.TaskDTO
		if err := rows.Scan(&r.ID, &r.Title, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		t, err := model.FromDTO(r)
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) Get(id model.ID) (*model.Task, error) {
	var r model.TaskDTO
	err := s.db.QueryRow(`SELECT id, title, created_at, updated_at FROM tasks WHERE id = ?`, id).
		Scan(&r.ID, &r.Title, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return model.FromDTO(r)
}

func (s *SQLiteStore) Create(title string) (*model.Task, error) {
	t, err := model.NewTask(title)
	if err != nil {
		return nil, err
	}
	res, err := s.db.Exec(`INSERT INTO tasks (title, created_at, updated_at) VALUES (?, ?, ?)`,
		t.Title(), t.CreatedAt(), t.UpdatedAt())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	t.SetID(model.ID(id))
	return t, nil
}

func (s *SQLiteStore) Save(t *model.Task) error {
	res, err := s.db.Exec(`UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?`,
		t.Title(), t.UpdatedAt(), t.ID())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound(t.ID())
	}
	return nil
}

func (s *SQLiteStore) Delete(id model.ID) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound(id)
	}
	return nil
}
