package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
	"livetodo/internal/model"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id         BIGSERIAL PRIMARY KEY,
			title      TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) List() ([]*model.Task, error) {
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

func (s *PostgresStore) Get(id model.ID) (*model.Task, error) {
	var r model.TaskDTO
	err := s.db.QueryRow(`SELECT id, title, created_at, updated_at FROM tasks WHERE id = $1`, id).
		Scan(&r.ID, &r.Title, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return model.FromDTO(r)
}

func (s *PostgresStore) Create(title string) (*model.Task, error) {
	t, err := model.NewTask(title)
	if err != nil {
		return nil, err
	}
	var id model.ID
	err = s.db.QueryRow(`INSERT INTO tasks (title, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`,
		t.Title(), t.CreatedAt(), t.UpdatedAt()).Scan(&id)
	if err != nil {
		return nil, err
	}
	t.SetID(id)
	return t, nil
}

func (s *PostgresStore) Save(t *model.Task) error {
	res, err := s.db.Exec(`UPDATE tasks SET title = $1, updated_at = $2 WHERE id = $3`,
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

func (s *PostgresStore) Delete(id model.ID) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = $1`, id)
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
