package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-kafkaforms/internal/store"
)

const templateColumns = `id, code, name, engine, headers, template, schema, created_at, modified_at`

type templates struct {
	pool *pgxpool.Pool
}

func scanTemplate(row pgx.Row) (store.MessageTemplate, error) {
	var (
		m       store.MessageTemplate
		headers []byte
		schema  []byte
	)
	if err := row.Scan(&m.ID, &m.Code, &m.Name, &m.Engine, &headers, &m.Template, &schema, &m.CreatedAt, &m.ModifiedAt); err != nil {
		return m, err
	}
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &m.Headers); err != nil {
			return m, fmt.Errorf("decoding headers: %w", err)
		}
	}
	m.Schema = json.RawMessage(schema)
	return m, nil
}

func templateArgs(m store.MessageTemplate) ([]byte, []byte, error) {
	headers := m.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	encodedHeaders, err := json.Marshal(headers)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: encoding headers: %w", err)
	}
	schema := []byte(m.Schema)
	if len(schema) == 0 {
		schema = []byte("{}")
	}
	return encodedHeaders, schema, nil
}

func (r *templates) List(ctx context.Context) ([]store.MessageTemplate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM message_template ORDER BY id`)
	if err != nil {
		return nil, mapError(err, 0)
	}
	defer rows.Close()

	out := []store.MessageTemplate{}
	for rows.Next() {
		m, err := scanTemplate(rows)
		if err != nil {
			return nil, mapError(err, 0)
		}
		out = append(out, m)
	}
	return out, mapError(rows.Err(), 0)
}

func (r *templates) Get(ctx context.Context, id int64) (store.MessageTemplate, error) {
	m, err := scanTemplate(r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM message_template WHERE id = $1`, id))
	return m, mapError(err, id)
}

func (r *templates) Create(ctx context.Context, m store.MessageTemplate) (store.MessageTemplate, error) {
	headers, schema, err := templateArgs(m)
	if err != nil {
		return store.MessageTemplate{}, err
	}
	created, err := scanTemplate(r.pool.QueryRow(ctx,
		`INSERT INTO message_template (code, name, engine, headers, template, schema)
		 VALUES ($1, $2, $3, $4::jsonb, $5, $6::jsonb)
		 RETURNING `+templateColumns,
		m.Code, m.Name, m.Engine, string(headers), m.Template, string(schema)))
	return created, mapError(err, 0)
}

func (r *templates) Update(ctx context.Context, m store.MessageTemplate) (store.MessageTemplate, error) {
	headers, schema, err := templateArgs(m)
	if err != nil {
		return store.MessageTemplate{}, err
	}
	updated, err := scanTemplate(r.pool.QueryRow(ctx,
		`UPDATE message_template
		 SET code = $2, name = $3, engine = $4, headers = $5::jsonb, template = $6, schema = $7::jsonb, modified_at = now()
		 WHERE id = $1
		 RETURNING `+templateColumns,
		m.ID, m.Code, m.Name, m.Engine, string(headers), m.Template, string(schema)))
	return updated, mapError(err, m.ID)
}

func (r *templates) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM message_template WHERE id = $1`, id)
	if err != nil {
		return mapError(err, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", store.ErrNotFound, id)
	}
	return nil
}
