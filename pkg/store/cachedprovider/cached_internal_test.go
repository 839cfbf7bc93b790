// storetest.Conformance is not run against this package: Connect pings a
// real Redis server, which this test suite has no fixture for. These
// tests exercise the cache-key derivation logic directly instead.
package cachedprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/memoryprovider"
)

func TestReadKeyChangesAfterBumpGeneration(t *testing.T) {
	p := New(Config{}, memoryprovider.New())
	before := p.readKey("items", "42")
	p.bumpGeneration("items")
	after := p.readKey("items", "42")
	assert.NotEqual(t, before, after)
}

func TestQueryKeyStableForSameOptions(t *testing.T) {
	p := New(Config{}, memoryprovider.New())
	opts := store.QueryOptions{Filters: store.Filter{"name": {Value: "ada"}}}
	assert.Equal(t, p.queryKey("items", opts), p.queryKey("items", opts))
}

func TestQueryKeyDiffersPerCollection(t *testing.T) {
	p := New(Config{}, memoryprovider.New())
	opts := store.QueryOptions{}
	assert.NotEqual(t, p.queryKey("items", opts), p.queryKey("notes", opts))
}
