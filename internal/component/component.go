package component

import (
	"context"
	"time"

	"livetodo/internal/model"
)

// Уровни flash-сообщений
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
)

// Flash — одно всплывающее сообщение для пользователя. Живёт один цикл
// рендера: в подписанное состояние не попадает.
type Flash struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Event — событие аудита: что сделали с задачей и как поменялся заголовок
type Event struct {
	Op     string    `json:"op"`
	TaskID model.ID  `json:"task_id,omitempty"`
	At     time.Time `json:"at"`
	Before string    `json:"before,omitempty"`
	After  string    `json:"after,omitempty"`
}

type AuditLogger interface {
	LogEvent(ctx context.Context, e Event) error
}
