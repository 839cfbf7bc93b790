// Package storetest runs the universal invariants and concrete end-to-end
// scenarios every store.Provider must satisfy, regardless of back-end.
// The memory, file, relational and git-sync test files each call
// Conformance once and add whatever back-end-specific behaviour (durability across restarts, dynamic
// columns, commit history) doesn't belong in a back-end-neutral suite.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

// Conformance runs every universal invariant and literal scenario from the
// provider contract against a fresh Provider built by newProvider. It
// covers connect/disconnect, create/read/update/delete and query only;
// transactions and indexing are not exercised, and no subtest is skipped
// when a provider reports store.KindUnsupported.
func Conformance(t *testing.T, newProvider func() store.Provider) {
	t.Run("CreateThenReadReturnsEqualDocument", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		created, err := p.Create(ctx(), "items", store.Document{"name": "a", "value": 1.0})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID())

		got, err := p.Read(ctx(), "items", created.ID())
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("ReadResultIsACopy", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		created, err := p.Create(ctx(), "items", store.Document{"name": "a"})
		require.NoError(t, err)

		first, err := p.Read(ctx(), "items", created.ID())
		require.NoError(t, err)
		first["name"] = "mutated"

		second, err := p.Read(ctx(), "items", created.ID())
		require.NoError(t, err)
		assert.Equal(t, "a", second["name"])
	})

	t.Run("DeleteThenReadReturnsNil", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		created, err := p.Create(ctx(), "items", store.Document{"name": "a"})
		require.NoError(t, err)

		removed, err := p.Delete(ctx(), "items", created.ID())
		require.NoError(t, err)
		assert.True(t, removed)

		got, err := p.Read(ctx(), "items", created.ID())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("UpdateMergesOverExisting", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		created, err := p.Create(ctx(), "items", store.Document{"name": "a", "value": 1.0})
		require.NoError(t, err)

		updated, err := p.Update(ctx(), "items", created.ID(), store.Document{"value": 2.0})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, created.ID(), updated.ID())
		assert.Equal(t, "a", updated["name"])
		assert.Equal(t, 2.0, updated["value"])
	})

	t.Run("UpdateWithEmptyPartialIsNoOp", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		created, err := p.Create(ctx(), "items", store.Document{"name": "a", "value": 1.0})
		require.NoError(t, err)

		updated, err := p.Update(ctx(), "items", created.ID(), store.Document{})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "a", updated["name"])
		assert.Equal(t, 1.0, updated["value"])
	})

	t.Run("QueryWithNoFiltersReturnsEveryDocument", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		for _, name := range []string{"a", "b", "c"} {
			_, err := p.Create(ctx(), "items", store.Document{"name": name})
			require.NoError(t, err)
		}

		docs, err := p.Query(ctx(), "items", store.QueryOptions{})
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("CreateWithPreassignedIDPreservesIt", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		created, err := p.Create(ctx(), "items", store.Document{"id": "fixed-id", "name": "a"})
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", created.ID())

		got, err := p.Read(ctx(), "items", "fixed-id")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "fixed-id", got.ID())
	})

	t.Run("InWithEmptyListYieldsNoResults", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		_, err := p.Create(ctx(), "items", store.Document{"name": "a"})
		require.NoError(t, err)

		docs, err := p.Query(ctx(), "items", store.QueryOptions{
			Filters: store.Filter{"name": {Op: store.OpIn, Value: []any{}}},
		})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("NinWithEmptyListYieldsAllResults", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		_, err := p.Create(ctx(), "items", store.Document{"name": "a"})
		require.NoError(t, err)

		docs, err := p.Query(ctx(), "items", store.QueryOptions{
			Filters: store.Filter{"name": {Op: store.OpNin, Value: []any{}}},
		})
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("SortIsStableOnEqualKeys", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		var ids []string
		for i := 0; i < 3; i++ {
			created, err := p.Create(ctx(), "items", store.Document{"group": "same", "seq": float64(i)})
			require.NoError(t, err)
			ids = append(ids, created.ID())
		}

		docs, err := p.Query(ctx(), "items", store.QueryOptions{
			SortBy: []store.SortOption{{Field: "group", Order: store.Asc}},
		})
		require.NoError(t, err)
		require.Len(t, docs, 3)
		for i, doc := range docs {
			assert.Equal(t, float64(i), doc["seq"])
		}
	})

	t.Run("PaginationBoundaries", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		for i := 0; i < 3; i++ {
			_, err := p.Create(ctx(), "items", store.Document{"seq": float64(i)})
			require.NoError(t, err)
		}

		beyond := 10
		docs, err := p.Query(ctx(), "items", store.QueryOptions{Offset: &beyond})
		require.NoError(t, err)
		assert.Empty(t, docs)

		zero := 0
		docs, err = p.Query(ctx(), "items", store.QueryOptions{Limit: &zero})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("ScenarioCreateAndRead", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		created, err := p.Create(ctx(), "items", store.Document{"name": "a", "value": 1.0})
		require.NoError(t, err)

		got, err := p.Read(ctx(), "items", created.ID())
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("ScenarioFilterWithOperator", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		for _, doc := range []store.Document{
			{"name": "A", "value": 100.0},
			{"name": "B", "value": 200.0},
			{"name": "C", "value": 300.0},
		} {
			_, err := p.Create(ctx(), "items", doc)
			require.NoError(t, err)
		}

		docs, err := p.Query(ctx(), "items", store.QueryOptions{
			Filters: store.Filter{"value": {Op: store.OpGt, Value: 150.0}},
		})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		values := []float64{docs[0]["value"].(float64), docs[1]["value"].(float64)}
		assert.ElementsMatch(t, []float64{200.0, 300.0}, values)
	})

	t.Run("ScenarioSortAndPaginate", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		for _, v := range []float64{100, 200, 300, 400, 500} {
			_, err := p.Create(ctx(), "items", store.Document{"value": v})
			require.NoError(t, err)
		}

		offset, limit := 1, 2
		docs, err := p.Query(ctx(), "items", store.QueryOptions{
			SortBy: []store.SortOption{{Field: "value", Order: store.Asc}},
			Offset: &offset,
			Limit:  &limit,
		})
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, 200.0, docs[0]["value"])
		assert.Equal(t, 300.0, docs[1]["value"])
	})

	t.Run("ScenarioUpdatePreservesID", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		created, err := p.Create(ctx(), "items", store.Document{"value": 1.0})
		require.NoError(t, err)

		updated, err := p.Update(ctx(), "items", created.ID(), store.Document{"value": 999.0})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, created.ID(), updated.ID())
		assert.Equal(t, 999.0, updated["value"])

		got, err := p.Read(ctx(), "items", created.ID())
		require.NoError(t, err)
		assert.Equal(t, 999.0, got["value"])
	})

	t.Run("ScenarioMissingReturnsNull", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		got, err := p.Read(ctx(), "items", "no-such")
		require.NoError(t, err)
		assert.Nil(t, got)

		updated, err := p.Update(ctx(), "items", "no-such", store.Document{"x": 1.0})
		require.NoError(t, err)
		assert.Nil(t, updated)

		removed, err := p.Delete(ctx(), "items", "no-such")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("DuplicateCreateIsRejectedOrHandledExplicitly", func(t *testing.T) {
		p := connect(t, newProvider)
		defer disconnect(t, p)

		_, err := p.Create(ctx(), "items", store.Document{"id": "dup", "name": "first"})
		require.NoError(t, err)

		// Providers either reject the duplicate (store.IsDuplicateKey) or
		// define their own overwrite semantics (memoryprovider); either is
		// valid as long as it does not silently corrupt the collection.
		_, err = p.Create(ctx(), "items", store.Document{"id": "dup", "name": "second"})
		if err != nil {
			assert.True(t, store.IsDuplicateKey(err))
		}
	})
}

func connect(t *testing.T, newProvider func() store.Provider) store.Provider {
	t.Helper()
	p := newProvider()
	require.NoError(t, p.Connect(context.Background()))
	return p
}

func disconnect(t *testing.T, p store.Provider) {
	t.Helper()
	require.NoError(t, p.Disconnect(context.Background()))
}

func ctx() context.Context {
	return context.Background()
}
