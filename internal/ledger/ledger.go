// Package ledger - клиент авторитетного журнала записей.
//
// Журнал хранит версионированные записи (kind, key) -> payload. Изменения отправляются
// атомарными пачками (Entry) в два этапа: SubmitAppend ставит пачку в очередь и
// возвращает Handle, AwaitConfirmation ждет подтверждения, отказа или таймаута.
// Каждая мутация несет ожидаемую версию записи (compare-and-set); ключи из
// последовательности выдаются только при успешном коммите, поэтому отклоненная пачка
// не расходует номер.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("ledger: record not found")
	ErrVersionConflict = errors.New("ledger: version conflict")
	ErrRejected        = errors.New("ledger: entry rejected")
	ErrTimeout         = errors.New("ledger: confirmation timeout")
	ErrClosed          = errors.New("ledger: client closed")
	ErrUnknownHandle   = errors.New("ledger: unknown handle")
)

// Kind - тип записи в журнале
type Kind string

// Mutation - запись одной версии одной записи.
// ExpectVersion == 0 означает, что записи еще не должно существовать.
// Sequence == true - ключ выдается журналом как следующее число для Kind.
type Mutation struct {
	Kind          Kind
	Key           string
	Sequence      bool
	ExpectVersion int64
	Payload       []byte
}

// Entry - атомарная пачка мутаций: применяется целиком или не применяется вовсе
type Entry struct {
	Mutations []Mutation
}

// Validate проверяет форму пачки до постановки в очередь
func (e Entry) Validate() error {
	if len(e.Mutations) == 0 {
		return fmt.Errorf("%w: empty entry", ErrRejected)
	}
	seen := make(map[string]struct{}, len(e.Mutations))
	for i, m := range e.Mutations {
		if m.Kind == "" {
			return fmt.Errorf("%w: mutation %d has no kind", ErrRejected, i)
		}
		if len(m.Payload) == 0 {
			return fmt.Errorf("%w: mutation %d has no payload", ErrRejected, i)
		}
		if m.ExpectVersion < 0 {
			return fmt.Errorf("%w: mutation %d has negative version", ErrRejected, i)
		}
		if m.Sequence {
			if m.Key != "" || m.ExpectVersion != 0 {
				return fmt.Errorf("%w: sequence mutation %d must not carry key or version", ErrRejected, i)
			}
			continue
		}
		if m.Key == "" {
			return fmt.Errorf("%w: mutation %d has no key", ErrRejected, i)
		}
		id := string(m.Kind) + "/" + m.Key
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate record %s", ErrRejected, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Record - подтвержденное состояние записи
type Record struct {
	Kind      Kind
	Key       string
	Version   int64
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Receipt - подтверждение применения пачки.
// Keys и Versions идут в порядке мутаций пачки.
type Receipt struct {
	Seq         int64
	Keys        []string
	Versions    []int64
	ConfirmedAt time.Time
}

// Handle - идентификатор отправленной, но, возможно, еще не подтвержденной пачки
type Handle struct {
	ID          uuid.UUID
	SubmittedAt time.Time
}

// Client - узкий интерфейс журнала, с которым работает ядро
type Client interface {
	SubmitAppend(ctx context.Context, entry Entry) (Handle, error)
	AwaitConfirmation(ctx context.Context, handle Handle, timeout time.Duration) (Receipt, error)
	ReadRecord(ctx context.Context, kind Kind, key string) (*Record, error)
	Head(ctx context.Context, kind Kind) (int64, error)
	Close() error
}

// Store - бэкенд, применяющий пачки транзакционно
type Store interface {
	Apply(ctx context.Context, handle Handle, entry Entry, now time.Time) (Receipt, error)
	Read(ctx context.Context, kind Kind, key string) (*Record, error)
	Head(ctx context.Context, kind Kind) (int64, error)
	Close() error
}

// Observer получает длительность и исход каждого подтверждения (метрики)
type Observer interface {
	ObserveConfirmation(outcome string, d time.Duration)
}

// Outcome классифицирует ошибку применения для метрик и логов
func Outcome(err error) string {
	switch {
	case err == nil:
		return "confirmed"
	case errors.Is(err, ErrVersionConflict):
		return "conflict"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "rejected"
	}
}
