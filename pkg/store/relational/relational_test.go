package relational_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/relational"
	"github.com/shashiranjanraj/polystore/pkg/storetest"
)

var conformanceDBSeq int64

func TestConformance(t *testing.T) {
	storetest.Conformance(t, func() store.Provider {
		n := atomic.AddInt64(&conformanceDBSeq, 1)
		dsn := fmt.Sprintf("file:conformance_%d?mode=memory&cache=shared", n)
		return relational.New(relational.Config{Driver: "sqlite", DSN: dsn})
	})
}

func newConnected(t *testing.T) *relational.Provider {
	t.Helper()
	p := relational.New(relational.Config{Driver: "sqlite", DSN: "file::memory:?cache=shared"})
	require.NoError(t, p.Connect(context.Background()))
	t.Cleanup(func() { _ = p.Disconnect(context.Background()) })
	return p
}

func TestCreateAndRead(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t)

	created, err := p.Create(ctx, "users", store.Document{"name": "ada", "age": 30})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID())

	read, err := p.Read(ctx, "users", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "ada", read["name"])
	assert.EqualValues(t, 30, read["age"])
}

// TestDynamicColumns exercises the scenario where later documents in the
// same collection introduce fields earlier ones never had: the table must
// grow new columns rather than rejecting the write.
func TestDynamicColumns(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t)

	_, err := p.Create(ctx, "events", store.Document{"kind": "login"})
	require.NoError(t, err)

	second, err := p.Create(ctx, "events", store.Document{"kind": "purchase", "amount": 19.99})
	require.NoError(t, err)

	read, err := p.Read(ctx, "events", second.ID())
	require.NoError(t, err)
	assert.EqualValues(t, 19.99, read["amount"])

	results, err := p.Query(ctx, "events", store.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestNestedDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t)

	created, err := p.Create(ctx, "profiles", store.Document{
		"name": "grace",
		"address": store.Document{
			"city": "nyc",
			"zip":  "10001",
		},
		"tags": []any{"admin", "beta"},
	})
	require.NoError(t, err)

	read, err := p.Read(ctx, "profiles", created.ID())
	require.NoError(t, err)

	addr, ok := read["address"].(store.Document)
	require.True(t, ok)
	assert.Equal(t, "nyc", addr["city"])

	tags, ok := read["tags"].([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"admin", "beta"}, tags)
}

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t)

	created, err := p.Create(ctx, "users", store.Document{"name": "ada", "age": 30})
	require.NoError(t, err)

	updated, err := p.Update(ctx, "users", created.ID(), store.Document{"age": 31})
	require.NoError(t, err)
	assert.Equal(t, "ada", updated["name"])
	assert.EqualValues(t, 31, updated["age"])
}

func TestDeleteThenReadReturnsNull(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t)

	created, err := p.Create(ctx, "users", store.Document{"name": "ada"})
	require.NoError(t, err)

	removed, err := p.Delete(ctx, "users", created.ID())
	require.NoError(t, err)
	assert.True(t, removed)

	read, err := p.Read(ctx, "users", created.ID())
	require.NoError(t, err)
	assert.Nil(t, read)
}

func TestDuplicateCreateFails(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t)

	_, err := p.Create(ctx, "users", store.Document{"id": "fixed-id", "name": "ada"})
	require.NoError(t, err)

	_, err = p.Create(ctx, "users", store.Document{"id": "fixed-id", "name": "grace"})
	require.Error(t, err)
	assert.True(t, store.IsDuplicateKey(err))
}

func TestQueryWithFilterAndSort(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t)

	_, err := p.Create(ctx, "scores", store.Document{"value": 3})
	require.NoError(t, err)
	_, err = p.Create(ctx, "scores", store.Document{"value": 1})
	require.NoError(t, err)
	_, err = p.Create(ctx, "scores", store.Document{"value": 2})
	require.NoError(t, err)

	results, err := p.Query(ctx, "scores", store.QueryOptions{
		Filters: store.Filter{"value": {Op: store.OpGte, Value: 2}},
		SortBy:  []store.SortOption{{Field: "value", Order: store.Asc}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.EqualValues(t, 2, results[0]["value"])
	assert.EqualValues(t, 3, results[1]["value"])
}

func TestTransactionCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t)

	require.NoError(t, p.BeginTransaction(ctx))
	_, err := p.Create(ctx, "orders", store.Document{"item": "book"})
	require.NoError(t, err)
	require.NoError(t, p.Rollback(ctx))

	results, err := p.Query(ctx, "orders", store.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, p.BeginTransaction(ctx))
	_, err = p.Create(ctx, "orders", store.Document{"item": "pen"})
	require.NoError(t, err)
	require.NoError(t, p.Commit(ctx))

	results, err = p.Query(ctx, "orders", store.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestEnsureIndexIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t)

	require.NoError(t, p.EnsureSchema(ctx, "users", &store.SchemaDefinition{
		Fields: []store.SchemaField{{Name: "email", Required: true}},
	}))

	def := store.IndexDefinition{Name: "users_email_idx", Fields: []string{"email"}, Unique: true}
	require.NoError(t, p.EnsureIndex(ctx, "users", def))
	require.NoError(t, p.EnsureIndex(ctx, "users", def))
}
