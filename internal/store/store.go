// Package store persists bootstrap groups and message templates.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a record's code is already taken.
	ErrConflict = errors.New("store: code already exists")
)

// BootstrapGroup names a set of Kafka brokers and the timeout used when
// talking to them. MaxTimeout is in milliseconds.
type BootstrapGroup struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	MaxTimeout       int64     `json:"maxTimeout"`
	BootstrapServers []string  `json:"bootstrapServers"`
	CreatedAt        time.Time `json:"createdAt"`
	ModifiedAt       time.Time `json:"modifiedAt"`
}

// Timeout returns MaxTimeout as a duration.
func (g BootstrapGroup) Timeout() time.Duration {
	return time.Duration(g.MaxTimeout) * time.Millisecond
}

func (g BootstrapGroup) identity() (int64, string) { return g.ID, g.Code }

func (g BootstrapGroup) stamps() (time.Time, time.Time) { return g.CreatedAt, g.ModifiedAt }

func (g BootstrapGroup) withIdentity(id int64, created, modified time.Time) BootstrapGroup {
	g.ID, g.CreatedAt, g.ModifiedAt = id, created, modified
	g.BootstrapServers = append([]string(nil), g.BootstrapServers...)
	return g
}

// MessageTemplate is a named message body template. Schema holds the
// canonical interchange encoding of the input schema.
type MessageTemplate struct {
	ID         int64             `json:"id"`
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Engine     string            `json:"engine"`
	Headers    map[string]string `json:"headers"`
	Template   string            `json:"template"`
	Schema     json.RawMessage   `json:"schema"`
	CreatedAt  time.Time         `json:"createdAt"`
	ModifiedAt time.Time         `json:"modifiedAt"`
}

func (m MessageTemplate) identity() (int64, string) { return m.ID, m.Code }

func (m MessageTemplate) stamps() (time.Time, time.Time) { return m.CreatedAt, m.ModifiedAt }

func (m MessageTemplate) withIdentity(id int64, created, modified time.Time) MessageTemplate {
	m.ID, m.CreatedAt, m.ModifiedAt = id, created, modified
	if m.Headers != nil {
		headers := make(map[string]string, len(m.Headers))
		for k, v := range m.Headers {
			headers[k] = v
		}
		m.Headers = headers
	}
	m.Schema = append(json.RawMessage(nil), m.Schema...)
	return m
}

// Repository is the CRUD surface shared by both record types. Create
// assigns the id and timestamps; Update keeps CreatedAt.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, record T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Store bundles the repositories of one backend.
type Store interface {
	Groups() Repository[BootstrapGroup]
	Templates() Repository[MessageTemplate]
	Close()
}
