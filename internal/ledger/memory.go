package ledger

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

type recordKey struct {
	kind Kind
	key  string
}

// JournalEntry - строка журнала: одна примененная мутация
type JournalEntry struct {
	Seq       int64
	Handle    Handle
	Kind      Kind
	Key       string
	Version   int64
	Payload   []byte
	Committed time.Time
}

// MemoryStore - бэкенд в памяти процесса, для локального запуска и тестов
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[recordKey]*Record
	sequences map[Kind]int64
	journal   []JournalEntry
	seq       int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:   make(map[recordKey]*Record),
		sequences: make(map[Kind]int64),
	}
}

func (s *MemoryStore) Apply(ctx context.Context, handle Handle, entry Entry, now time.Time) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// сначала выдаем ключи и проверяем все версии, затем пишем - пачка атомарна
	keys := make([]string, len(entry.Mutations))
	next := make(map[Kind]int64)
	for i, m := range entry.Mutations {
		key := m.Key
		if m.Sequence {
			if _, ok := next[m.Kind]; !ok {
				next[m.Kind] = s.sequences[m.Kind]
			}
			next[m.Kind]++
			key = strconv.FormatInt(next[m.Kind], 10)
		}
		current := int64(0)
		if rec, ok := s.records[recordKey{m.Kind, key}]; ok {
			current = rec.Version
		}
		if current != m.ExpectVersion {
			return Receipt{}, fmt.Errorf("%w: mutation %d %s/%s expected version %d, have %d",
				ErrVersionConflict, i, m.Kind, key, m.ExpectVersion, current)
		}
		keys[i] = key
	}

	s.seq++
	for kind, last := range next {
		s.sequences[kind] = last
	}
	receipt := Receipt{
		Seq:         s.seq,
		Keys:        keys,
		Versions:    make([]int64, len(entry.Mutations)),
		ConfirmedAt: now,
	}
	for i, m := range entry.Mutations {
		payload := append([]byte(nil), m.Payload...)

		rk := recordKey{m.Kind, keys[i]}
		rec, ok := s.records[rk]
		if !ok {
			rec = &Record{Kind: m.Kind, Key: keys[i], CreatedAt: now}
			s.records[rk] = rec
		}
		rec.Version++
		rec.Payload = payload
		rec.UpdatedAt = now

		s.journal = append(s.journal, JournalEntry{
			Seq:       s.seq,
			Handle:    handle,
			Kind:      m.Kind,
			Key:       keys[i],
			Version:   rec.Version,
			Payload:   payload,
			Committed: now,
		})
		receipt.Versions[i] = rec.Version
	}
	return receipt, nil
}

func (s *MemoryStore) Read(ctx context.Context, kind Kind, key string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordKey{kind, key}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, key)
	}
	cp := *rec
	cp.Payload = append([]byte(nil), rec.Payload...)
	return &cp, nil
}

func (s *MemoryStore) Head(ctx context.Context, kind Kind) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sequences[kind], nil
}

// Journal возвращает копию журнала примененных мутаций
func (s *MemoryStore) Journal() []JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]JournalEntry(nil), s.journal...)
}

func (s *MemoryStore) Close() error {
	return nil
}
