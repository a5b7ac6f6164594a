// Package storetest holds a conformance suite run against every
// store.Store backend.
package storetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-kafkaforms/internal/store"
)

// Run exercises CRUD and code uniqueness on a fresh store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("Groups", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		repo := s.Groups()

		created, err := repo.Create(ctx, store.BootstrapGroup{
			Code:             "local",
			Name:             "Local",
			MaxTimeout:       5000,
			BootstrapServers: []string{"localhost:9092"},
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, []string{"localhost:9092"}, created.BootstrapServers)

		_, err = repo.Create(ctx, store.BootstrapGroup{Code: "local", Name: "Dup"})
		require.ErrorIs(t, err, store.ErrConflict)

		other, err := repo.Create(ctx, store.BootstrapGroup{Code: "staging", Name: "Staging"})
		require.NoError(t, err)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Local", got.Name)
		assert.Equal(t, int64(5000), got.MaxTimeout)

		got.Name = "Local cluster"
		got.BootstrapServers = []string{"a:9092", "b:9092"}
		updated, err := repo.Update(ctx, got)
		require.NoError(t, err)
		assert.Equal(t, "Local cluster", updated.Name)
		assert.Equal(t, []string{"a:9092", "b:9092"}, updated.BootstrapServers)
		assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

		other.Code = "local"
		_, err = repo.Update(ctx, other)
		require.ErrorIs(t, err, store.ErrConflict)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, created.ID, list[0].ID)

		require.NoError(t, repo.Delete(ctx, created.ID))
		_, err = repo.Get(ctx, created.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, repo.Delete(ctx, created.ID), store.ErrNotFound)
		_, err = repo.Update(ctx, store.BootstrapGroup{ID: created.ID, Code: "gone"})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Templates", func(t *testing.T) {
		ctx := context.Background()
		s := open(t)
		repo := s.Templates()

		created, err := repo.Create(ctx, store.MessageTemplate{
			Code:     "order-created",
			Name:     "Order created",
			Engine:   "PONGO2",
			Headers:  map[string]string{"source": "forms"},
			Template: `{"id": {{ id|tojson }}}`,
			Schema:   json.RawMessage(`{"type":"object"}`),
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"source": "forms"}, got.Headers)
		assert.JSONEq(t, `{"type":"object"}`, string(got.Schema))

		got.Headers["source"] = "mutated"
		again, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "forms", again.Headers["source"])

		again.Engine = "RAW"
		again.Template = "static"
		updated, err := repo.Update(ctx, again)
		require.NoError(t, err)
		assert.Equal(t, "RAW", updated.Engine)
		assert.Equal(t, "static", updated.Template)

		_, err = repo.Create(ctx, store.MessageTemplate{Code: "order-created", Engine: "RAW", Schema: json.RawMessage(`{}`)})
		require.ErrorIs(t, err, store.ErrConflict)

		require.NoError(t, repo.Delete(ctx, created.ID))
		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
