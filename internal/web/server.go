package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"livetodo/internal/component"
	"livetodo/internal/live"
	"livetodo/internal/repository"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static/live.js
var liveJS []byte

type Server struct {
	store repository.Store
	tmpl  *template.Template
	live  *live.Handler
}

func New(store repository.Store, audit component.AuditLogger) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	lh := live.NewHandler(live.SecretFromEnv(), tmpl)
	lh.Register("tasks", "tasks.html.tmpl", func() live.Component {
		return component.New(store, audit)
	})

	return &Server{store: store, tmpl: tmpl, live: lh}, nil
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	// страница и живой компонент
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/live/message/{name}", s.live.ServeMessage).Methods(http.MethodPost)
	r.HandleFunc("/static/live.js", s.handleLiveJS).Methods(http.MethodGet)

	// REST API для машинного доступа
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/items", s.handleListItems).Methods(http.MethodGet)
	api.HandleFunc("/item", s.withJWTAuth(s.handleCreateItem)).Methods(http.MethodPost)
	api.HandleFunc("/item/{id}", s.handleGetItem).Methods(http.MethodGet)
	api.HandleFunc("/item/{id}", s.withJWTAuth(s.handleUpdateItem)).Methods(http.MethodPut)
	api.HandleFunc("/item/{id}", s.withJWTAuth(s.handleDeleteItem)).Methods(http.MethodDelete)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	return r
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	fmt.Println("[Web] Веб сервер стартовал на ", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, err := s.live.Mount(r.Context(), "tasks")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = s.tmpl.ExecuteTemplate(w, "index.html.tmpl", map[string]any{
		"Body": body,
	})
}

func (s *Server) handleLiveJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write(liveJS)
}
