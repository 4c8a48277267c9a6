package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"livetodo/internal/model"
	"livetodo/internal/repository"
)

// Консольная админка: работает напрямую с тем же JSON‑хранилищем, что и
// веб. Удобно накидать задач или прибраться без браузера.
func main() {
	_ = godotenv.Load()

	storePath := os.Getenv("TASKS_FILE")
	if storePath == "" {
		storePath = "data/tasks.json"
	}
	store := repository.NewJSONStore(storePath)

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println()
		fmt.Println("== TODO / админка ==")
		fmt.Println("1) Добавить задачу")
		fmt.Println("2) Список всех задач")
		fmt.Println("3) Переименовать задачу")
		fmt.Println("4) Удалить задачу")
		fmt.Println("5) Выход")
		fmt.Print("Выбор: ")

		switch readLine(in) {
		case "1":
			handleAdd(in, store)
		case "2":
			printTasks(store)
		case "3":
			handleRename(in, store)
		case "4":
			handleDelete(in, store)
		case "5":
			fmt.Println("Пока!")
			return
		default:
			fmt.Println("неизвестная команда")
		}
	}
}

func handleAdd(in *bufio.Scanner, store repository.Store) {
	fmt.Print("Заголовок: ")
	title := strings.TrimSpace(readLine(in))
	if title == "" {
		fmt.Println("пустой заголовок")
		return
	}
	t, err := store.Create(title)
	if err != nil {
		fmt.Println("ошибка добавления:", err)
		return
	}
	fmt.Println("OK, id =", t.ID())
}

func handleRename(in *bufio.Scanner, store repository.Store) {
	id, ok := askID(in)
	if !ok {
		return
	}
	t, err := store.Get(id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		fmt.Println("нет такой задачи")
		return
	}
	if err != nil {
		fmt.Println("ошибка:", err)
		return
	}
	fmt.Printf("Текущий заголовок: %s\n", t.Title())
	fmt.Print("Новый заголовок: ")
	title := strings.TrimSpace(readLine(in))
	if err := t.SetTitle(title); err != nil {
		fmt.Println("ошибка:", err)
		return
	}
	if err := store.Save(t); err != nil {
		fmt.Println("ошибка сохранения:", err)
		return
	}
	fmt.Println("OK")
}

func handleDelete(in *bufio.Scanner, store repository.Store) {
	id, ok := askID(in)
	if !ok {
		return
	}
	if err := store.Delete(id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			fmt.Println("нет такой задачи")
			return
		}
		fmt.Println("ошибка:", err)
		return
	}
	fmt.Println("OK, удалено")
}

func printTasks(store repository.Store) {
	tasks, err := store.List()
	if err != nil {
		fmt.Println("ошибка:", err)
		return
	}
	if len(tasks) == 0 {
		fmt.Println("задач нет")
		return
	}
	for _, t := range tasks {
		fmt.Printf("%4d  %s  (создана %s)\n", t.ID(), t.Title(), t.CreatedAt().Format("2006-01-02 15:04"))
	}
}

func askID(in *bufio.Scanner) (model.ID, bool) {
	fmt.Print("ID задачи: ")
	raw := strings.TrimSpace(readLine(in))
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Println("это не число")
		return 0, false
	}
	return model.ID(n), true
}

func readLine(in *bufio.Scanner) string {
	if !in.Scan() {
		return ""
	}
	return in.Text()
}
