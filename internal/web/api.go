// @title Live TODO API
// @version 1.0
// @description Task list API behind the live to-do page, with JWT authorization
// @BasePath /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"livetodo/internal/model"
	"livetodo/internal/repository"
)

// LoginRequest — тело запроса для авторизации
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// TaskCreateRequest — тело запроса при создании задачи
type TaskCreateRequest struct {
	Title string `json:"title"`
}

// TaskUpdateRequest — тело запроса при обновлении задачи
type TaskUpdateRequest struct {
	Title string `json:"title"`
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	return []byte(secret)
}

// Авторизация пользователя (возвращает JWT‑токен)
// handleLogin godoc
// @Summary      User login
// @Description  Authenticates user and returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "User credentials"
// @Success      200 {object} map[string]string "token"
// @Failure      400 {string} string "invalid json"
// @Failure      401 {string} string "unauthorized"
// @Router       /login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	login := os.Getenv("LOGIN")
	pass := os.Getenv("PASSWORD")

	if creds.Login != login || creds.Password != pass {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"login": creds.Login,
		"exp":   time.Now().Add(2 * time.Hour).Unix(),
	})
	tokenStr, err := token.SignedString(jwtSecret())
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": tokenStr})
}

// Middleware‑проверка JWT перед изменением данных
func (s *Server) withJWTAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return jwtSecret(), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func taskIDVar(r *http.Request) (model.ID, error) {
	idNum, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, err
	}
	return model.ID(idNum), nil
}

// Создание новой задачи
// handleCreateItem godoc
// @Summary      Create task
// @Description  Creates a new task with the given title
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        data body TaskCreateRequest true "Task data"
// @Success      200 {object} map[string]interface{} "Created task ID"
// @Failure      400 {string} string "invalid json"
// @Failure      500 {string} string "server error"
// @Security     BearerAuth
// @Router       /item [post]
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var dto TaskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(dto.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	t, err := s.store.Create(dto.Title)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"id": t.ID()})
}

// Возвращает список всех задач
// handleListItems godoc
// @Summary      List tasks
// @Description  Returns all tasks
// @Tags         tasks
// @Produce      json
// @Success      200 {array} model.TaskDTO
// @Router       /items [get]
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	list := make([]model.TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, t.ToDTO())
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Просмотр одной задачи
// handleGetItem godoc
// @Summary      Get task
// @Tags         tasks
// @Produce      json
// @Param        id path int true "Task ID"
// @Success      200 {object} model.TaskDTO
// @Failure      400 {string} string "bad id"
// @Failure      404 {string} string "not found"
// @Router       /item/{id} [get]
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	t, err := s.store.Get(id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t.ToDTO())
}

// Обновление заголовка задачи
// handleUpdateItem godoc
// @Summary      Update task
// @Tags         tasks
// @Accept       json
// @Param        id path int true "Task ID"
// @Param        data body TaskUpdateRequest true "Fields to update"
// @Success      200
// @Failure      400 {string} string "bad id"
// @Failure      404 {string} string "not found"
// @Security     BearerAuth
// @Router       /item/{id} [put]
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	var dto TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	t, err := s.store.Get(id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := t.SetTitle(dto.Title); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.Save(t); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Удаление задачи
// handleDeleteItem godoc
// @Summary      Delete task
// @Tags         tasks
// @Param        id path int true "Task ID"
// @Success      200
// @Failure      400 {string} string "bad id"
// @Failure      404 {string} string "not found"
// @Security     BearerAuth
// @Router       /item/{id} [delete]
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
