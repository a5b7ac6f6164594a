package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-kafkaforms/internal/store"
)

const groupColumns = `id, code, name, max_timeout, bootstrap_servers, created_at, modified_at`

type groups struct {
	pool *pgxpool.Pool
}

func scanGroup(row pgx.Row) (store.BootstrapGroup, error) {
	var g store.BootstrapGroup
	err := row.Scan(&g.ID, &g.Code, &g.Name, &g.MaxTimeout, &g.BootstrapServers, &g.CreatedAt, &g.ModifiedAt)
	return g, err
}

func (r *groups) List(ctx context.Context) ([]store.BootstrapGroup, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+groupColumns+` FROM bootstrap_group ORDER BY id`)
	if err != nil {
		return nil, mapError(err, 0)
	}
	defer rows.Close()

	out := []store.BootstrapGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, mapError(err, 0)
		}
		out = append(out, g)
	}
	return out, mapError(rows.Err(), 0)
}

func (r *groups) Get(ctx context.Context, id int64) (store.BootstrapGroup, error) {
	g, err := scanGroup(r.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM bootstrap_group WHERE id = $1`, id))
	return g, mapError(err, id)
}

func (r *groups) Create(ctx context.Context, g store.BootstrapGroup) (store.BootstrapGroup, error) {
	servers := g.BootstrapServers
	if servers == nil {
		servers = []string{}
	}
	created, err := scanGroup(r.pool.QueryRow(ctx,
		`INSERT INTO bootstrap_group (code, name, max_timeout, bootstrap_servers)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+groupColumns,
		g.Code, g.Name, g.MaxTimeout, servers))
	return created, mapError(err, 0)
}

func (r *groups) Update(ctx context.Context, g store.BootstrapGroup) (store.BootstrapGroup, error) {
	servers := g.BootstrapServers
	if servers == nil {
		servers = []string{}
	}
	updated, err := scanGroup(r.pool.QueryRow(ctx,
		`UPDATE bootstrap_group
		 SET code = $2, name = $3, max_timeout = $4, bootstrap_servers = $5, modified_at = now()
		 WHERE id = $1
		 RETURNING `+groupColumns,
		g.ID, g.Code, g.Name, g.MaxTimeout, servers))
	return updated, mapError(err, g.ID)
}

func (r *groups) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bootstrap_group WHERE id = $1`, id)
	if err != nil {
		return mapError(err, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", store.ErrNotFound, id)
	}
	return nil
}
