package component

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"livetodo/internal/live"
	"livetodo/internal/model"
	"livetodo/internal/repository"
)

// Mode — в каком состоянии редактор заголовка. Раньше это был один общий
// буфер на «новую» и «редактируемую» задачу, из-за чего add мог выстрелить
// посреди редактирования. Теперь состояние помечено явно.
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeComposing Mode = "composing"
	ModeEditing   Mode = "editing"
)

// State — сериализуемая часть компонента, ездит между браузером и
// сервером в подписанном виде.
type State struct {
	Mode      Mode     `json:"mode"`
	EditingID model.ID `json:"editing_id,omitempty"`
	Title     string   `json:"title"`
}

// TaskComponent — серверный компонент списка задач: пять операций,
// помеченный буфер редактирования и flash-сообщения для текущего рендера.
type TaskComponent struct {
	State

	store repository.Store
	audit AuditLogger

	tasks   []*model.Task
	flashes []Flash
}

func New(store repository.Store, audit AuditLogger) *TaskComponent {
	return &TaskComponent{
		State: State{Mode: ModeIdle},
		store: store,
		audit: audit,
	}
}

// Hydrate — перечитывает список задач перед каждым действием, чтобы
// рендер всегда отражал актуальное хранилище.
func (c *TaskComponent) Hydrate(ctx context.Context) error {
	return c.refresh()
}

func (c *TaskComponent) refresh() error {
	tasks, err := c.store.List()
	if err != nil {
		return err
	}
	c.tasks = tasks
	return nil
}

// Доступ для шаблона
func (c *TaskComponent) Tasks() []*model.Task { return c.tasks }
func (c *TaskComponent) Flashes() []Flash     { return c.flashes }
func (c *TaskComponent) IsEditing() bool      { return c.Mode == ModeEditing }

// IsEditingTask — подсветка редактируемой строки в шаблоне
func (c *TaskComponent) IsEditingTask(id model.ID) bool {
	return c.Mode == ModeEditing && c.EditingID == id
}

func (c *TaskComponent) flash(level, format string, args ...any) {
	c.flashes = append(c.flashes, Flash{Level: level, Text: fmt.Sprintf(format, args...)})
}

func (c *TaskComponent) logEvent(ctx context.Context, e Event) {
	if c.audit == nil {
		return
	}
	e.At = time.Now()
	// аудит не должен ронять действие
	_ = c.audit.LogEvent(ctx, e)
}

func (c *TaskComponent) reset() {
	c.Mode = ModeIdle
	c.EditingID = 0
	c.Title = ""
}

// AddTask — создаёт задачу из набранного заголовка. Пробельный заголовок
// считается пустым. Во время редактирования добавление не срабатывает,
// чтобы не завести новую задачу вместо обновления существующей.
func (c *TaskComponent) AddTask(ctx context.Context) error {
	if c.Mode == ModeEditing {
		c.flash(LevelInfo, "Сначала завершите редактирование")
		return nil
	}
	title := strings.TrimSpace(c.Title)
	c.reset()
	if title == "" {
		return nil
	}
	t, err := c.store.Create(title)
	if err != nil {
		return err
	}
	c.flash(LevelSuccess, "Задача «%s» добавлена", t.Title())
	c.logEvent(ctx, Event{Op: "add", TaskID: t.ID(), After: t.Title()})
	return c.refresh()
}

// DeleteTask — удаляет задачу. Несуществующий id — тихий no-op: запись
// могли удалить в соседней вкладке, пользователю тут сообщать нечего.
func (c *TaskComponent) DeleteTask(ctx context.Context, id model.ID) error {
	t, err := c.store.Get(id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := c.store.Delete(id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil
		}
		return err
	}
	if c.IsEditingTask(id) {
		c.reset()
	}
	c.flash(LevelSuccess, "Задача «%s» удалена", t.Title())
	c.logEvent(ctx, Event{Op: "delete", TaskID: id, Before: t.Title()})
	return c.refresh()
}

// PreviewTask — стадирует заголовок существующей задачи в буфер.
// Хранилище не трогает.
func (c *TaskComponent) PreviewTask(ctx context.Context, id model.ID) error {
	t, err := c.store.Get(id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	c.Mode = ModeEditing
	c.EditingID = id
	c.Title = t.Title()
	return nil
}

// UpdateTask — переписывает заголовок редактируемой задачи из буфера.
// Срабатывает только для задачи, которая сейчас в режиме редактирования.
func (c *TaskComponent) UpdateTask(ctx context.Context, id model.ID) error {
	if !c.IsEditingTask(id) {
		return nil
	}
	title := strings.TrimSpace(c.Title)
	if title == "" {
		// пустой заголовок не сохраняем, редактирование продолжается
		return nil
	}
	t, err := c.store.Get(id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		c.reset()
		return nil
	}
	if err != nil {
		return err
	}
	before := t.Title()
	if err := t.SetTitle(title); err != nil {
		return nil
	}
	if err := c.store.Save(t); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.reset()
			return nil
		}
		return err
	}
	c.reset()
	c.flash(LevelSuccess, "Задача «%s» обновлена", t.Title())
	c.logEvent(ctx, Event{Op: "update", TaskID: id, Before: before, After: t.Title()})
	return c.refresh()
}

// --- интеграция с live ---

func (c *TaskComponent) LoadState(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &c.State); err != nil {
		return err
	}
	if c.Mode != ModeIdle && c.Mode != ModeComposing && c.Mode != ModeEditing {
		c.Mode = ModeIdle
	}
	return nil
}

func (c *TaskComponent) StateJSON() ([]byte, error) {
	return json.Marshal(c.State)
}

// SyncInput — отложенное значение поля ввода, приехавшее вместе с
// действием. Набор текста в пустом состоянии переводит буфер в composing.
func (c *TaskComponent) SyncInput(field string, value json.RawMessage) error {
	switch field {
	case "title":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return fmt.Errorf("%w: title: %v", live.ErrBadArgs, err)
		}
		c.Title = s
		if c.Mode == ModeIdle && strings.TrimSpace(s) != "" {
			c.Mode = ModeComposing
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", live.ErrUnknownField, field)
	}
}

// Dispatch — маппинг имён действий из шаблона на методы компонента
func (c *TaskComponent) Dispatch(ctx context.Context, method string, args []json.RawMessage) error {
	switch method {
	case "add_task":
		return c.AddTask(ctx)
	case "delete_task":
		id, err := argID(args)
		if err != nil {
			return err
		}
		return c.DeleteTask(ctx, id)
	case "preview_task":
		id, err := argID(args)
		if err != nil {
			return err
		}
		return c.PreviewTask(ctx, id)
	case "update_task":
		id, err := argID(args)
		if err != nil {
			return err
		}
		return c.UpdateTask(ctx, id)
	default:
		return fmt.Errorf("%w: %s", live.ErrUnknownAction, method)
	}
}

func argID(args []json.RawMessage) (model.ID, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: want 1 id arg, got %d", live.ErrBadArgs, len(args))
	}
	var n int64
	if err := json.Unmarshal(args[0], &n); err != nil {
		return 0, fmt.Errorf("%w: %v", live.ErrBadArgs, err)
	}
	return model.ID(n), nil
}
