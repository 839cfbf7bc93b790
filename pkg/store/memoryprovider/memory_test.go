package memoryprovider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/memoryprovider"
	"github.com/shashiranjanraj/polystore/pkg/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Conformance(t, func() store.Provider { return memoryprovider.New() })
}

func connected(t *testing.T) *memoryprovider.Provider {
	t.Helper()
	p := memoryprovider.New()
	require.NoError(t, p.Connect(context.Background()))
	t.Cleanup(func() { _ = p.Disconnect(context.Background()) })
	return p
}

func TestCreateAndRead(t *testing.T) {
	ctx := context.Background()
	p := connected(t)

	created, err := p.Create(ctx, "items", store.Document{"name": "a", "value": 1})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID())

	read, err := p.Read(ctx, "items", created.ID())
	require.NoError(t, err)
	assert.Equal(t, created, read)
}

func TestReadReturnsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	p := connected(t)

	created, err := p.Create(ctx, "items", store.Document{"name": "a"})
	require.NoError(t, err)

	read, err := p.Read(ctx, "items", created.ID())
	require.NoError(t, err)
	read["name"] = "mutated"

	again, err := p.Read(ctx, "items", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "a", again["name"])
}

func TestFilterWithOperator(t *testing.T) {
	ctx := context.Background()
	p := connected(t)

	for _, v := range []int{100, 200, 300} {
		_, err := p.Create(ctx, "items", store.Document{"value": v})
		require.NoError(t, err)
	}

	results, err := p.Query(ctx, "items", store.QueryOptions{
		Filters: store.Filter{"value": {Op: store.OpGt, Value: 150}},
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Greater(t, r["value"], 150)
	}
}

func TestSortAndPaginate(t *testing.T) {
	ctx := context.Background()
	p := connected(t)

	for _, v := range []int{100, 200, 300, 400, 500} {
		_, err := p.Create(ctx, "items", store.Document{"value": v})
		require.NoError(t, err)
	}

	offset, limit := 1, 2
	results, err := p.Query(ctx, "items", store.QueryOptions{
		SortBy: []store.SortOption{{Field: "value", Order: store.Asc}},
		Offset: &offset,
		Limit:  &limit,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 200, results[0]["value"])
	assert.Equal(t, 300, results[1]["value"])
}

func TestUpdatePreservesID(t *testing.T) {
	ctx := context.Background()
	p := connected(t)

	created, err := p.Create(ctx, "items", store.Document{"value": 1})
	require.NoError(t, err)

	updated, err := p.Update(ctx, "items", created.ID(), store.Document{"value": 999})
	require.NoError(t, err)
	assert.Equal(t, created.ID(), updated.ID())
	assert.Equal(t, 999, updated["value"])

	read, err := p.Read(ctx, "items", created.ID())
	require.NoError(t, err)
	assert.Equal(t, 999, read["value"])
}

func TestMissingReturnsNull(t *testing.T) {
	ctx := context.Background()
	p := connected(t)

	read, err := p.Read(ctx, "items", "no-such")
	require.NoError(t, err)
	assert.Nil(t, read)

	updated, err := p.Update(ctx, "items", "no-such", store.Document{"x": 1})
	require.NoError(t, err)
	assert.Nil(t, updated)

	deleted, err := p.Delete(ctx, "items", "no-such")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestInWithEmptyListYieldsNothing(t *testing.T) {
	ctx := context.Background()
	p := connected(t)
	_, err := p.Create(ctx, "items", store.Document{"value": 1})
	require.NoError(t, err)

	results, err := p.Query(ctx, "items", store.QueryOptions{
		Filters: store.Filter{"value": {Op: store.OpIn, Value: []any{}}},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNinWithEmptyListYieldsAll(t *testing.T) {
	ctx := context.Background()
	p := connected(t)
	_, err := p.Create(ctx, "items", store.Document{"value": 1})
	require.NoError(t, err)
	_, err = p.Create(ctx, "items", store.Document{"value": 2})
	require.NoError(t, err)

	results, err := p.Query(ctx, "items", store.QueryOptions{
		Filters: store.Filter{"value": {Op: store.OpNin, Value: []any{}}},
	})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestQueryWithoutFiltersReturnsEverything(t *testing.T) {
	ctx := context.Background()
	p := connected(t)
	for i := 0; i < 3; i++ {
		_, err := p.Create(ctx, "items", store.Document{"i": i})
		require.NoError(t, err)
	}

	results, err := p.Query(ctx, "items", store.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestDeleteThenReadReturnsNull(t *testing.T) {
	ctx := context.Background()
	p := connected(t)

	created, err := p.Create(ctx, "items", store.Document{"x": 1})
	require.NoError(t, err)

	ok, err := p.Delete(ctx, "items", created.ID())
	require.NoError(t, err)
	assert.True(t, ok)

	read, err := p.Read(ctx, "items", created.ID())
	require.NoError(t, err)
	assert.Nil(t, read)
}

func TestDoubleConnectIsNoOp(t *testing.T) {
	ctx := context.Background()
	p := memoryprovider.New()
	require.NoError(t, p.Connect(ctx))
	_, err := p.Create(ctx, "items", store.Document{"x": 1})
	require.NoError(t, err)

	require.NoError(t, p.Connect(ctx)) // warning no-op, must not wipe state
	results, err := p.Query(ctx, "items", store.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 1)

	require.NoError(t, p.Disconnect(ctx))
}

var _ store.Provider = memoryprovider.New()
