package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// entity is implemented by the record types. withIdentity returns a deep
// copy carrying the given id and timestamps.
type entity[T any] interface {
	identity() (int64, string)
	stamps() (created, modified time.Time)
	withIdentity(id int64, created, modified time.Time) T
}

// Memory keeps records in process. It is safe for concurrent use.
type Memory struct {
	groups    *table[BootstrapGroup]
	templates *table[MessageTemplate]
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		groups:    newTable[BootstrapGroup](),
		templates: newTable[MessageTemplate](),
	}
}

func (m *Memory) Groups() Repository[BootstrapGroup]     { return m.groups }
func (m *Memory) Templates() Repository[MessageTemplate] { return m.templates }
func (m *Memory) Close()                                 {}

type table[T entity[T]] struct {
	mu     sync.RWMutex
	rows   map[int64]T
	nextID int64
	now    func() time.Time
}

func newTable[T entity[T]]() *table[T] {
	return &table[T]{
		rows: make(map[int64]T),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func clone[T entity[T]](row T) T {
	id, _ := row.identity()
	created, modified := row.stamps()
	return row.withIdentity(id, created, modified)
}

func (t *table[T]) List(_ context.Context) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, clone(row))
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := out[i].identity()
		b, _ := out[j].identity()
		return a < b
	})
	return out, nil
}

func (t *table[T]) Get(_ context.Context, id int64) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return clone(row), nil
}

func (t *table[T]) Create(_ context.Context, record T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, code := record.identity()
	if err := t.checkCode(0, code); err != nil {
		var zero T
		return zero, err
	}
	t.nextID++
	now := t.now()
	row := record.withIdentity(t.nextID, now, now)
	t.rows[t.nextID] = row
	return clone(row), nil
}

func (t *table[T]) Update(_ context.Context, record T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	id, code := record.identity()
	existing, ok := t.rows[id]
	if !ok {
		return zero, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err := t.checkCode(id, code); err != nil {
		return zero, err
	}
	created, _ := existing.stamps()
	row := record.withIdentity(id, created, t.now())
	t.rows[id] = row
	return clone(row), nil
}

func (t *table[T]) Delete(_ context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) checkCode(id int64, code string) error {
	for otherID, row := range t.rows {
		if otherID == id {
			continue
		}
		if _, other := row.identity(); other == code {
			return fmt.Errorf("%w: %q", ErrConflict, code)
		}
	}
	return nil
}
