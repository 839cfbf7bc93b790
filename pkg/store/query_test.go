package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

func TestApplyFiltersEquality(t *testing.T) {
	items := []store.Document{
		{"name": "a"}, {"name": "b"},
	}
	out := store.ApplyFilters(items, store.Filter{"name": {Value: "a"}})
	assert.Len(t, out, 1)
	assert.Equal(t, "a", out[0]["name"])
}

func TestApplyFiltersMissingFieldSemantics(t *testing.T) {
	items := []store.Document{{"other": 1}}

	eq := store.ApplyFilters(items, store.Filter{"name": {Value: "a"}})
	assert.Empty(t, eq)

	ne := store.ApplyFilters(items, store.Filter{"name": {Op: store.OpNe, Value: "a"}})
	assert.Len(t, ne, 1)

	gt := store.ApplyFilters(items, store.Filter{"name": {Op: store.OpGt, Value: "a"}})
	assert.Empty(t, gt)
}

func TestApplyFiltersInNin(t *testing.T) {
	items := []store.Document{{"v": 1}, {"v": 2}, {"v": 3}}

	in := store.ApplyFilters(items, store.Filter{"v": {Op: store.OpIn, Value: []any{1, 3}}})
	assert.Len(t, in, 2)

	inEmpty := store.ApplyFilters(items, store.Filter{"v": {Op: store.OpIn, Value: []any{}}})
	assert.Empty(t, inEmpty)

	ninEmpty := store.ApplyFilters(items, store.Filter{"v": {Op: store.OpNin, Value: []any{}}})
	assert.Len(t, ninEmpty, 3)
}

func TestApplySortingStability(t *testing.T) {
	items := []store.Document{
		{"k": 1, "tag": "first"},
		{"k": 1, "tag": "second"},
		{"k": 0, "tag": "third"},
	}
	out := store.ApplySorting(items, []store.SortOption{{Field: "k", Order: store.Asc}})
	assert.Equal(t, "third", out[0]["tag"])
	assert.Equal(t, "first", out[1]["tag"])
	assert.Equal(t, "second", out[2]["tag"])
}

func TestApplyPaginationBoundaries(t *testing.T) {
	items := []store.Document{{"i": 0}, {"i": 1}, {"i": 2}}

	offset := 10
	assert.Empty(t, store.ApplyPagination(items, &offset, nil))

	zero := 0
	assert.Empty(t, store.ApplyPagination(items, nil, &zero))

	off, lim := 1, 2
	out := store.ApplyPagination(items, &off, &lim)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, out[0]["i"])
}

func TestDeepCloneIsIndependent(t *testing.T) {
	original := store.Document{
		"nested": store.Document{"a": 1},
		"list":   []any{1, 2, store.Document{"b": 2}},
	}
	clone := store.CloneDocument(original)

	clone["nested"].(store.Document)["a"] = 999
	clone["list"].([]any)[0] = "mutated"

	assert.Equal(t, 1, original["nested"].(store.Document)["a"])
	assert.Equal(t, 1, original["list"].([]any)[0])
}
