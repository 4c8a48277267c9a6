package repository

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"livetodo/internal/model"
)

// JSONStore — файловое JSON‑хранилище для задач. Каждая операция читает
// файл целиком и пишет обратно — для туториала этого достаточно.
type JSONStore struct {
	Path string
}

// NewJSONStore создаёт новое хранилище по указанному пути.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{Path: path}
}

func (s *JSONStore) load() ([]model.TaskDTO, error) {
	if s.Path == "" {
		return nil, errors.New("empty store path")
	}
	_ = os.MkdirAll(filepath.Dir(s.Path), 0o755)

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.TaskDTO{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []model.TaskDTO{}, nil
	}

	var items []model.TaskDTO
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// пишем во временный файл и переименовываем, чтобы не порвать данные на полпути
func (s *JSONStore) save(items []model.TaskDTO) error {
	if s.Path == "" {
		return errors.New("empty store path")
	}
	_ = os.MkdirAll(filepath.Dir(s.Path), 0o755)

	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

func (s *JSONStore) List() ([]*model.Task, error) {
	items, err := s.load()
	if err != nil {
		return nil, err
	}
	tasks := make([]*model.Task, 0, len(items))
	for _, r := range items {
		t, err := model.FromDTO(r)
		if err != nil {
			// битую запись пропускаем, остальное отдаём
			continue
		}
		tasks = append(tasks, t)
	}
	sortTasks(tasks)
	return tasks, nil
}

func (s *JSONStore) Get(id model.ID) (*model.Task, error) {
	items, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, r := range items {
		if r.ID == id {
			return model.FromDTO(r)
		}
	}
	return nil, errNotFound(id)
}

func (s *JSONStore) Create(title string) (*model.Task, error) {
	t, err := model.NewTask(title)
	if err != nil {
		return nil, err
	}
	items, err := s.load()
	if err != nil {
		return nil, err
	}
	var maxID model.ID
	for _, r := range items {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	t.SetID(maxID + 1)
	items = append(items, t.ToDTO())
	if err := s.save(items); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *JSONStore) Save(t *model.Task) error {
	items, err := s.load()
	if err != nil {
		return err
	}
	for i, r := range items {
		if r.ID == t.ID() {
			items[i] = t.ToDTO()
			return s.save(items)
		}
	}
	return errNotFound(t.ID())
}

func (s *JSONStore) Delete(id model.ID) error {
	items, err := s.load()
	if err != nil {
		return err
	}
	for i, r := range items {
		if r.ID == id {
			items = append(items[:i], items[i+1:]...)
			return s.save(items)
		}
	}
	return errNotFound(id)
}
