package live

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Message — то, что присылает клиентский рантайм на каждое действие.
// State едет строкой как есть: клиент её не разбирает и не пересобирает,
// иначе подпись бы не сошлась. Отложенные значения полей — в Updates.
type Message struct {
	ID       string                     `json:"id"`
	State    string                     `json:"state"`
	Checksum string                     `json:"checksum"`
	Updates  map[string]json.RawMessage `json:"updates,omitempty"`
	Action   Action                     `json:"action"`
}

// Action — имя метода компонента плюс аргументы из шаблонного выражения,
// например delete_task(3)
type Action struct {
	Method string            `json:"method"`
	Args   []json.RawMessage `json:"args"`
}

// Reply — ответ: новый HTML региона и новое подписанное состояние
type Reply struct {
	ID       string `json:"id"`
	HTML     string `json:"html"`
	State    string `json:"state"`
	Checksum string `json:"checksum"`
}

type registration struct {
	tmplName string
	factory  Factory
}

// Handler — точка входа живых компонентов: регистрация, первичный рендер
// на странице и обработка фоновых сообщений.
type Handler struct {
	secret []byte
	tmpl   *template.Template
	comps  map[string]registration
}

func NewHandler(secret []byte, tmpl *template.Template) *Handler {
	return &Handler{
		secret: secret,
		tmpl:   tmpl,
		comps:  make(map[string]registration),
	}
}

// Register — привязывает имя компонента к шаблону и фабрике
func (h *Handler) Register(name, tmplName string, f Factory) {
	h.comps[name] = registration{tmplName: tmplName, factory: f}
}

func (h *Handler) render(tmplName string, c Component) (string, error) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, tmplName, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var mountTmpl = template.Must(template.New("live-mount").Parse(
	`<div live:component="{{.Name}}" live:id="{{.ID}}" live:state="{{.State}}" live:checksum="{{.Checksum}}">{{.Inner}}</div>`))

// Mount — первичный рендер компонента для вставки в страницу: обёртка с
// подписанным состоянием плюс содержимое региона.
func (h *Handler) Mount(ctx context.Context, name string) (template.HTML, error) {
	reg, ok := h.comps[name]
	if !ok {
		return "", fmt.Errorf("live: component %q is not registered", name)
	}
	c := reg.factory()
	if err := c.Hydrate(ctx); err != nil {
		return "", err
	}
	inner, err := h.render(reg.tmplName, c)
	if err != nil {
		return "", err
	}
	state, err := c.StateJSON()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = mountTmpl.Execute(&buf, map[string]any{
		"Name":     name,
		"ID":       uuid.NewString(),
		"State":    string(state),
		"Checksum": Checksum(h.secret, state),
		"Inner":    template.HTML(inner),
	})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// ServeMessage — обработчик POST /live/message/{name}. Проверяет подпись,
// гидрирует компонент, выполняет действие и отдаёт перерисованный регион.
func (h *Handler) ServeMessage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	reg, ok := h.comps[name]
	if !ok {
		http.Error(w, "unknown component", http.StatusNotFound)
		return
	}

	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !VerifyChecksum(h.secret, []byte(msg.State), msg.Checksum) {
		http.Error(w, "state checksum mismatch", http.StatusBadRequest)
		return
	}

	c := reg.factory()
	if err := c.LoadState(json.RawMessage(msg.State)); err != nil {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	for field, val := range msg.Updates {
		if err := c.SyncInput(field, val); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := c.Hydrate(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := c.Dispatch(r.Context(), msg.Action.Method, msg.Action.Args); err != nil {
		if errors.Is(err, ErrUnknownAction) || errors.Is(err, ErrBadArgs) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	html, err := h.render(reg.tmplName, c)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	state, err := c.StateJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Reply{
		ID:       msg.ID,
		HTML:     html,
		State:    string(state),
		Checksum: Checksum(h.secret, state),
	})
}
