package repository

import (
	"errors"
	"fmt"
	"sort"

	"livetodo/internal/model"
)

// Store — контракт хранилища задач. Намеренно позаписный (не load/save
// всего файла): компоненту нужны точечные операции get/create/save/delete.
type Store interface {
	List() ([]*model.Task, error)
	Get(id model.ID) (*model.Task, error)
	Create(title string) (*model.Task, error)
	Save(t *model.Task) error
	Delete(id model.ID) error
}

// ErrTaskNotFound — задачи с таким id нет. Хранилище всегда говорит об
// этом явно, глотать или нет — решает вызывающий.
var ErrTaskNotFound = errors.New("task not found")

func errNotFound(id model.ID) error {
	return fmt.Errorf("%w: %d", ErrTaskNotFound, id)
}

// сортировка как в старом сервисе: по времени создания, потом по id
func sortTasks(tasks []*model.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt().Equal(tasks[j].CreatedAt()) {
			return tasks[i].ID() < tasks[j].ID()
		}
		return tasks[i].CreatedAt().Before(tasks[j].CreatedAt())
	})
}
