package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"livetodo/internal/audit"
	"livetodo/internal/component"
	"livetodo/internal/repository"
	"livetodo/internal/web"
)

func main() {
	_ = godotenv.Load()

	store, err := openStore()
	if err != nil {
		log.Fatalf("store init error: %v", err)
	}

	var auditLog component.AuditLogger
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		auditLog = audit.NewRedisLogger(addr, os.Getenv("REDIS_PASSWORD"), 0, 24*time.Hour, "livetodo:audit")
		log.Println("[Audit] события пишем в Redis:", addr)
	}

	srv, err := web.New(store, auditLog)
	if err != nil {
		log.Fatalf("web init error: %v", err)
	}

	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			log.Fatalf("bad PORT %q: %v", p, err)
		}
		port = n
	}

	if err := srv.Start(port); err != nil {
		log.Fatalf("serve error: %v", err)
	}
}

// openStore — выбирает бэкенд по переменной STORE. По умолчанию — JSON
// файл, как в консольной версии.
func openStore() (repository.Store, error) {
	switch kind := os.Getenv("STORE"); kind {
	case "", "json":
		path := os.Getenv("TASKS_FILE")
		if path == "" {
			path = "data/tasks.json"
		}
		return repository.NewJSONStore(path), nil

	case "sqlite":
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "data/tasks.db"
		}
		return repository.NewSQLiteStore(path)

	case "postgres":
		dsn := os.Getenv("POSTGRES_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("STORE=postgres, но POSTGRES_DSN пуст")
		}
		return repository.NewPostgresStore(dsn)

	case "mongo":
		uri := os.Getenv("MONGO_URI")
		if uri == "" {
			uri = "mongodb://localhost:27017"
		}
		return repository.NewMongoStore(uri, "livetodo", "tasks")

	default:
		return nil, fmt.Errorf("неизвестный STORE: %q", kind)
	}
}
