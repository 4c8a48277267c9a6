// Package live — серверная часть «живых» компонентов: подписанное
// состояние ездит между браузером и сервером, каждое действие — это один
// фоновый POST, в ответ приходит перерисованный HTML региона.
package live

import (
	"context"
	"encoding/json"
	"errors"
)

// Component — серверная половина живого компонента. Состояние компонент
// сериализует сам, гидрация вызывается перед каждым действием.
type Component interface {
	// Hydrate — восстанавливает то, что не ездит в состоянии
	// (например, список задач из хранилища)
	Hydrate(ctx context.Context) error
	// SyncInput — применяет отложенное значение поля ввода. Подписанное
	// состояние клиент не трогает, изменения едут отдельно.
	SyncInput(field string, value json.RawMessage) error
	// Dispatch — выполняет действие по имени из шаблона
	Dispatch(ctx context.Context, method string, args []json.RawMessage) error
	// LoadState / StateJSON — (де)сериализация подписанной части состояния
	LoadState(raw json.RawMessage) error
	StateJSON() ([]byte, error)
}

// Factory — создаёт свежий экземпляр компонента на каждый запрос
type Factory func() Component

var (
	// ErrUnknownAction — в шаблоне привязано действие, которого у компонента нет
	ErrUnknownAction = errors.New("unknown action")
	// ErrBadArgs — аргументы действия не разобрались
	ErrBadArgs = errors.New("bad action args")
	// ErrUnknownField — пришёл апдейт поля, которого у компонента нет
	ErrUnknownField = errors.New("unknown field")
)
