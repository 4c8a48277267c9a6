package model

import (
	"errors"
	"strings"
	"time"
)

// ID — уникальный номер задачи, просто число
type ID int64

// meta — технич поля про время создания/обновления
type meta struct {
	createdAt time.Time
	updatedAt time.Time
}

func (m *meta) touch() {
	m.updatedAt = time.Now()
}

// Task — основная структура задачи. В этом проекте у задачи только
// заголовок, вся остальная вьюшная логика живёт в компоненте.
type Task struct {
	meta
	id    ID
	title string
}

// NewTask — создает новую задачу. ID здесь не выдаём, его назначает
// хранилище при создании (id поле трогаем если только знаем, что ничего плохого не будет!)
func NewTask(title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title is empty")
	}
	now := time.Now()
	return &Task{
		title: title,
		meta: meta{
			createdAt: now,
			updatedAt: now,
		},
	}, nil
}

// SetID — используется хранилищем при создании записи
func (t *Task) SetID(id ID) {
	t.id = id
}

func (t *Task) TypeName() string { return "task" }

// Геттеры и всякое для получения
func (t *Task) ID() ID               { return t.id }
func (t *Task) Title() string        { return t.title }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }

// Меняет заголовок и трогает updatedAt
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title is empty")
	}
	t.title = title
	t.touch()
	return nil
}

// TaskDTO — используется чтобы сохранять задачу в JSON/БД и отдавать в API
type TaskDTO struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Task) ToDTO() TaskDTO {
	return TaskDTO{
		ID:        t.id,
		Title:     t.title,
		CreatedAt: t.createdAt,
		UpdatedAt: t.updatedAt,
	}
}

// FromDTO — восстанавливает задачу из сохранённого представления
func FromDTO(r TaskDTO) (*Task, error) {
	if strings.TrimSpace(r.Title) == "" {
		return nil, errors.New("record: empty title")
	}
	return &Task{
		id:    r.ID,
		title: strings.TrimSpace(r.Title),
		meta: meta{
			createdAt: r.CreatedAt,
			updatedAt: r.UpdatedAt,
		},
	}, nil
}
