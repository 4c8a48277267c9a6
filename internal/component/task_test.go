package component_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"livetodo/internal/component"
	"livetodo/internal/live"
	"livetodo/internal/model"
	"livetodo/internal/repository"
)

// фейковое хранилище для тестов
type fakeStore struct {
	items  map[model.ID]model.TaskDTO
	nextID model.ID

	listErr error
	saveErr error
}

func newFakeStore(titles ...string) *fakeStore {
	fs := &fakeStore{items: make(map[model.ID]model.TaskDTO), nextID: 1}
	base := time.Now().Add(-time.Hour)
	for i, title := range titles {
		id := fs.nextID
		fs.items[id] = model.TaskDTO{
			ID:        id,
			Title:     title,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		fs.nextID++
	}
	return fs
}

func (f *fakeStore) List() ([]*model.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var tasks []*model.Task
	for id := model.ID(1); id < f.nextID; id++ {
		r, ok := f.items[id]
		if !ok {
			continue
		}
		t, err := model.FromDTO(r)
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (f *fakeStore) Get(id model.ID) (*model.Task, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	return model.FromDTO(r)
}

func (f *fakeStore) Create(title string) (*model.Task, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	t, err := model.NewTask(title)
	if err != nil {
		return nil, err
	}
	t.SetID(f.nextID)
	f.nextID++
	f.items[t.ID()] = t.ToDTO()
	return t, nil
}

func (f *fakeStore) Save(t *model.Task) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.items[t.ID()]; !ok {
		return repository.ErrTaskNotFound
	}
	f.items[t.ID()] = t.ToDTO()
	return nil
}

func (f *fakeStore) Delete(id model.ID) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(f.items, id)
	return nil
}

// аудит, который просто копит события
type fakeAudit struct {
	events []component.Event
}

func (f *fakeAudit) LogEvent(ctx context.Context, e component.Event) error {
	f.events = append(f.events, e)
	return nil
}

func ctx() context.Context { return context.Background() }

func TestAddTask_CreatesAndClearsBuffer(t *testing.T) {
	fs := newFakeStore()
	c := component.New(fs, nil)
	c.Mode = component.ModeComposing
	c.Title = "Buy milk"

	if err := c.AddTask(ctx()); err != nil {
		t.Fatalf("AddTask err: %v", err)
	}
	if len(fs.items) != 1 {
		t.Fatalf("expected 1 task in store, got %d", len(fs.items))
	}
	if got := fs.items[1].Title; got != "Buy milk" {
		t.Fatalf("unexpected title: %q", got)
	}
	if c.Mode != component.ModeIdle || c.Title != "" {
		t.Fatalf("buffer not reset: mode=%s title=%q", c.Mode, c.Title)
	}
	flashes := c.Flashes()
	if len(flashes) != 1 || flashes[0].Level != component.LevelSuccess {
		t.Fatalf("expected 1 success flash, got %+v", flashes)
	}
	if !strings.Contains(flashes[0].Text, "Buy milk") {
		t.Fatalf("flash should mention the title: %q", flashes[0].Text)
	}
}

func TestAddTask_EmptyBuffer(t *testing.T) {
	fs := newFakeStore()
	c := component.New(fs, nil)

	if err := c.AddTask(ctx()); err != nil {
		t.Fatalf("AddTask err: %v", err)
	}
	if len(fs.items) != 0 {
		t.Fatalf("store should stay empty, got %d items", len(fs.items))
	}
	if c.Title != "" || c.Mode != component.ModeIdle {
		t.Fatalf("buffer should stay empty: mode=%s title=%q", c.Mode, c.Title)
	}
	if len(c.Flashes()) != 0 {
		t.Fatalf("no flash expected, got %+v", c.Flashes())
	}
}

func TestAddTask_WhitespaceOnlyBuffer(t *testing.T) {
	fs := newFakeStore()
	c := component.New(fs, nil)
	c.Mode = component.ModeComposing
	c.Title = "   \t "

	if err := c.AddTask(ctx()); err != nil {
		t.Fatalf("AddTask err: %v", err)
	}
	if len(fs.items) != 0 {
		t.Fatalf("whitespace-only title must not create a task, got %d", len(fs.items))
	}
	if c.Title != "" || c.Mode != component.ModeIdle {
		t.Fatalf("buffer should be cleared: mode=%s title=%q", c.Mode, c.Title)
	}
}

func TestAddTask_RefusedWhileEditing(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)
	if err := c.PreviewTask(ctx(), 1); err != nil {
		t.Fatalf("PreviewTask err: %v", err)
	}
	c.Title = "Something new"

	if err := c.AddTask(ctx()); err != nil {
		t.Fatalf("AddTask err: %v", err)
	}
	if len(fs.items) != 1 {
		t.Fatalf("add during edit must not create a task, got %d", len(fs.items))
	}
	if !c.IsEditingTask(1) || c.Title != "Something new" {
		t.Fatalf("editing state must survive: mode=%s title=%q", c.Mode, c.Title)
	}
	flashes := c.Flashes()
	if len(flashes) != 1 || flashes[0].Level != component.LevelInfo {
		t.Fatalf("expected 1 info flash, got %+v", flashes)
	}
}

func TestDeleteTask_RemovesExactlyOne(t *testing.T) {
	fs := newFakeStore("A", "B", "C")
	c := component.New(fs, nil)

	if err := c.DeleteTask(ctx(), 2); err != nil {
		t.Fatalf("DeleteTask err: %v", err)
	}
	if len(fs.items) != 2 {
		t.Fatalf("expected 2 tasks left, got %d", len(fs.items))
	}
	if _, ok := fs.items[2]; ok {
		t.Fatal("task 2 should be gone")
	}
	if fs.items[1].Title != "A" || fs.items[3].Title != "C" {
		t.Fatalf("other tasks must be untouched: %+v", fs.items)
	}
	flashes := c.Flashes()
	if len(flashes) != 1 || !strings.Contains(flashes[0].Text, "B") {
		t.Fatalf("flash should mention the deleted title, got %+v", flashes)
	}
}

func TestDeleteTask_MissingIsSilentNoop(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)

	if err := c.DeleteTask(ctx(), 2); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(fs.items) != 1 || fs.items[1].Title != "Buy milk" {
		t.Fatalf("store must be unchanged: %+v", fs.items)
	}
	if len(c.Flashes()) != 0 {
		t.Fatalf("no notification expected, got %+v", c.Flashes())
	}
}

func TestPreviewTask_StagesTitleWithoutMutating(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)

	if err := c.PreviewTask(ctx(), 1); err != nil {
		t.Fatalf("PreviewTask err: %v", err)
	}
	if c.Mode != component.ModeEditing || c.EditingID != 1 || c.Title != "Buy milk" {
		t.Fatalf("unexpected state: mode=%s id=%d title=%q", c.Mode, c.EditingID, c.Title)
	}
	if fs.items[1].Title != "Buy milk" || len(fs.items) != 1 {
		t.Fatalf("store must not change on preview: %+v", fs.items)
	}
}

func TestPreviewTask_MissingIsSilentNoop(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)

	if err := c.PreviewTask(ctx(), 42); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if c.Mode != component.ModeIdle || c.Title != "" {
		t.Fatalf("state must be unchanged: mode=%s title=%q", c.Mode, c.Title)
	}
}

func TestPreviewThenUpdate_RoundTripKeepsTitle(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)

	if err := c.PreviewTask(ctx(), 1); err != nil {
		t.Fatalf("PreviewTask err: %v", err)
	}
	// буфер не трогаем — идемпотентный круг
	if err := c.UpdateTask(ctx(), 1); err != nil {
		t.Fatalf("UpdateTask err: %v", err)
	}
	if fs.items[1].Title != "Buy milk" {
		t.Fatalf("title must be its own prior value, got %q", fs.items[1].Title)
	}
	if c.Mode != component.ModeIdle || c.Title != "" {
		t.Fatalf("buffer must reset: mode=%s title=%q", c.Mode, c.Title)
	}
}

func TestPreviewEditUpdate_ChangesTitle(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)

	if err := c.PreviewTask(ctx(), 1); err != nil {
		t.Fatalf("PreviewTask err: %v", err)
	}
	c.Title = "Buy oat milk"
	if err := c.UpdateTask(ctx(), 1); err != nil {
		t.Fatalf("UpdateTask err: %v", err)
	}
	if fs.items[1].Title != "Buy oat milk" {
		t.Fatalf("expected updated title, got %q", fs.items[1].Title)
	}
	if c.Mode != component.ModeIdle || c.Title != "" {
		t.Fatalf("buffer must reset: mode=%s title=%q", c.Mode, c.Title)
	}
	flashes := c.Flashes()
	if len(flashes) != 1 || !strings.Contains(flashes[0].Text, "Buy oat milk") {
		t.Fatalf("flash should mention the new title, got %+v", flashes)
	}
}

func TestUpdateTask_OutsideEditingIsNoop(t *testing.T) {
	fs := newFakeStore("A", "B")
	c := component.New(fs, nil)
	c.Mode = component.ModeComposing
	c.Title = "hijack"

	if err := c.UpdateTask(ctx(), 1); err != nil {
		t.Fatalf("UpdateTask err: %v", err)
	}
	if fs.items[1].Title != "A" {
		t.Fatalf("update outside editing must not touch the store, got %q", fs.items[1].Title)
	}
}

func TestUpdateTask_WrongIDIsNoop(t *testing.T) {
	fs := newFakeStore("A", "B")
	c := component.New(fs, nil)
	_ = c.PreviewTask(ctx(), 1)
	c.Title = "renamed"

	if err := c.UpdateTask(ctx(), 2); err != nil {
		t.Fatalf("UpdateTask err: %v", err)
	}
	if fs.items[1].Title != "A" || fs.items[2].Title != "B" {
		t.Fatalf("wrong-id update must not touch the store: %+v", fs.items)
	}
	if !c.IsEditingTask(1) {
		t.Fatal("editing state must survive a wrong-id update")
	}
}

func TestUpdateTask_BlankTitleKeepsEditing(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)
	_ = c.PreviewTask(ctx(), 1)
	c.Title = "   "

	if err := c.UpdateTask(ctx(), 1); err != nil {
		t.Fatalf("UpdateTask err: %v", err)
	}
	if fs.items[1].Title != "Buy milk" {
		t.Fatalf("blank update must not persist, got %q", fs.items[1].Title)
	}
	if c.Mode != component.ModeEditing || c.EditingID != 1 {
		t.Fatalf("editing must continue: mode=%s id=%d", c.Mode, c.EditingID)
	}
}

func TestUpdateTask_VanishedResetsState(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)
	_ = c.PreviewTask(ctx(), 1)
	// задача исчезла между preview и update (например, удалили в другой вкладке)
	delete(fs.items, 1)

	if err := c.UpdateTask(ctx(), 1); err != nil {
		t.Fatalf("expected silent noop, got %v", err)
	}
	if c.Mode != component.ModeIdle || c.Title != "" {
		t.Fatalf("state must reset: mode=%s title=%q", c.Mode, c.Title)
	}
	if len(c.Flashes()) != 0 {
		t.Fatalf("no flash expected, got %+v", c.Flashes())
	}
}

func TestDeleteTask_CurrentlyEditedResetsState(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)
	_ = c.PreviewTask(ctx(), 1)

	if err := c.DeleteTask(ctx(), 1); err != nil {
		t.Fatalf("DeleteTask err: %v", err)
	}
	if c.Mode != component.ModeIdle || c.Title != "" || c.EditingID != 0 {
		t.Fatalf("state must reset after deleting the edited task: %+v", c.State)
	}
}

func TestHydrate_RefreshesTaskList(t *testing.T) {
	fs := newFakeStore("A")
	c := component.New(fs, nil)

	if err := c.Hydrate(ctx()); err != nil {
		t.Fatalf("Hydrate err: %v", err)
	}
	if len(c.Tasks()) != 1 {
		t.Fatalf("expected 1 task, got %d", len(c.Tasks()))
	}

	// кто-то дописал в хранилище мимо компонента
	if _, err := fs.Create("B"); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if err := c.Hydrate(ctx()); err != nil {
		t.Fatalf("Hydrate err: %v", err)
	}
	if len(c.Tasks()) != 2 {
		t.Fatalf("expected 2 tasks after rehydrate, got %d", len(c.Tasks()))
	}
}

func TestHydrate_ListErrorBubblesUp(t *testing.T) {
	fs := newFakeStore()
	fs.listErr = errors.New("boom")
	c := component.New(fs, nil)

	if err := c.Hydrate(ctx()); err == nil {
		t.Fatal("expected error from List, got nil")
	}
}

func TestDispatch_Actions(t *testing.T) {
	fs := newFakeStore("A")
	c := component.New(fs, nil)

	if err := c.Dispatch(ctx(), "delete_task", []json.RawMessage{json.RawMessage("1")}); err != nil {
		t.Fatalf("Dispatch delete_task err: %v", err)
	}
	if len(fs.items) != 0 {
		t.Fatalf("expected empty store, got %+v", fs.items)
	}
}

func TestDispatch_UnknownAction(t *testing.T) {
	c := component.New(newFakeStore(), nil)
	err := c.Dispatch(ctx(), "drop_database", nil)
	if !errors.Is(err, live.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestDispatch_BadArgs(t *testing.T) {
	c := component.New(newFakeStore(), nil)

	if err := c.Dispatch(ctx(), "delete_task", nil); !errors.Is(err, live.ErrBadArgs) {
		t.Fatalf("expected ErrBadArgs for missing id, got %v", err)
	}
	bad := []json.RawMessage{json.RawMessage(`"abc"`)}
	if err := c.Dispatch(ctx(), "delete_task", bad); !errors.Is(err, live.ErrBadArgs) {
		t.Fatalf("expected ErrBadArgs for non-numeric id, got %v", err)
	}
}

func TestSyncInput(t *testing.T) {
	c := component.New(newFakeStore(), nil)

	if err := c.SyncInput("title", json.RawMessage(`"Buy milk"`)); err != nil {
		t.Fatalf("SyncInput err: %v", err)
	}
	if c.Title != "Buy milk" || c.Mode != component.ModeComposing {
		t.Fatalf("unexpected state: mode=%s title=%q", c.Mode, c.Title)
	}

	if err := c.SyncInput("color", json.RawMessage(`"red"`)); !errors.Is(err, live.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestSyncInput_DoesNotDemoteEditing(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)
	_ = c.PreviewTask(ctx(), 1)

	if err := c.SyncInput("title", json.RawMessage(`"Buy oat milk"`)); err != nil {
		t.Fatalf("SyncInput err: %v", err)
	}
	if c.Mode != component.ModeEditing || c.EditingID != 1 {
		t.Fatalf("editing mode must survive input sync: %+v", c.State)
	}
}

func TestStateJSON_RoundTrip(t *testing.T) {
	fs := newFakeStore("Buy milk")
	c := component.New(fs, nil)
	_ = c.PreviewTask(ctx(), 1)

	raw, err := c.StateJSON()
	if err != nil {
		t.Fatalf("StateJSON err: %v", err)
	}

	c2 := component.New(fs, nil)
	if err := c2.LoadState(raw); err != nil {
		t.Fatalf("LoadState err: %v", err)
	}
	if c2.Mode != component.ModeEditing || c2.EditingID != 1 || c2.Title != "Buy milk" {
		t.Fatalf("state lost in round trip: %+v", c2.State)
	}
}

func TestLoadState_BadModeFallsBackToIdle(t *testing.T) {
	c := component.New(newFakeStore(), nil)
	if err := c.LoadState(json.RawMessage(`{"mode":"hacked","title":"x"}`)); err != nil {
		t.Fatalf("LoadState err: %v", err)
	}
	if c.Mode != component.ModeIdle {
		t.Fatalf("expected idle fallback, got %s", c.Mode)
	}
}

func TestAuditEvents(t *testing.T) {
	fs := newFakeStore("Old name")
	log := &fakeAudit{}
	c := component.New(fs, log)

	c.Mode = component.ModeComposing
	c.Title = "New task"
	if err := c.AddTask(ctx()); err != nil {
		t.Fatalf("AddTask err: %v", err)
	}
	_ = c.PreviewTask(ctx(), 1)
	c.Title = "Renamed"
	if err := c.UpdateTask(ctx(), 1); err != nil {
		t.Fatalf("UpdateTask err: %v", err)
	}
	if err := c.DeleteTask(ctx(), 1); err != nil {
		t.Fatalf("DeleteTask err: %v", err)
	}

	if len(log.events) != 3 {
		t.Fatalf("expected 3 audit events, got %d", len(log.events))
	}
	if log.events[0].Op != "add" || log.events[0].After != "New task" {
		t.Fatalf("bad add event: %+v", log.events[0])
	}
	if log.events[1].Op != "update" || log.events[1].Before != "Old name" || log.events[1].After != "Renamed" {
		t.Fatalf("bad update event: %+v", log.events[1])
	}
	if log.events[2].Op != "delete" || log.events[2].Before != "Renamed" {
		t.Fatalf("bad delete event: %+v", log.events[2])
	}
	for _, e := range log.events {
		if e.At.IsZero() {
			t.Fatalf("event timestamp not set: %+v", e)
		}
	}
}
