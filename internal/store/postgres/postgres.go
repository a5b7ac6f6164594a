// Package postgres implements store.Store on a pgx connection pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-kafkaforms/internal/store"
)

//go:embed schema.sql
var schemaDDL string

const uniqueViolation = "23505"

// Store is a postgres backed store.Store.
type Store struct {
	pool      *pgxpool.Pool
	groups    *groups
	templates *templates
}

// Open connects to dsn, pings the server and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping connection: %w", err)
	}
	s, err := New(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool and applies the schema.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return nil, fmt.Errorf("postgres: applying schema: %w", err)
	}
	return &Store{
		pool:      pool,
		groups:    &groups{pool: pool},
		templates: &templates{pool: pool},
	}, nil
}

func (s *Store) Groups() store.Repository[store.BootstrapGroup]     { return s.groups }
func (s *Store) Templates() store.Repository[store.MessageTemplate] { return s.templates }

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// mapError translates driver errors into store sentinels.
func mapError(err error, id int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: id %d", store.ErrNotFound, id)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrConflict, pgErr.Detail)
	}
	return fmt.Errorf("postgres: %w", err)
}

var _ store.Store = (*Store)(nil)
