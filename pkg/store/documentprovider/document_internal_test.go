// storetest.Conformance is not run against this package: Connect requires
// a reachable MongoDB instance, which this test suite has no fixture for.
// These tests exercise the BSON shape translation directly instead.
package documentprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

func TestToBSONMovesIDField(t *testing.T) {
	doc := store.Document{"id": "42", "name": "ada"}
	out := toBSON(doc)
	assert.Equal(t, "42", out["_id"])
	assert.Equal(t, "ada", out["name"])
	_, hasID := out["id"]
	assert.False(t, hasID)
}

func TestFromBSONRestoresIDField(t *testing.T) {
	raw := bson.M{"_id": "42", "name": "ada"}
	doc := fromBSON(raw)
	assert.Equal(t, "42", doc.ID())
	assert.Equal(t, "ada", doc["name"])
}

func TestNormalizeConvertsNestedShapes(t *testing.T) {
	raw := bson.M{
		"_id": "1",
		"address": primitive.M{
			"city": "nyc",
		},
		"tags": primitive.A{"a", "b"},
	}
	doc := fromBSON(raw)

	addr, ok := doc["address"].(store.Document)
	assert.True(t, ok)
	assert.Equal(t, "nyc", addr["city"])

	tags, ok := doc["tags"].([]any)
	assert.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, tags)
}

func TestBuildMongoFilterTranslatesOperators(t *testing.T) {
	f := store.Filter{
		"age": {Op: store.OpGte, Value: 18},
		"id":  {Value: "42"},
	}
	out := buildMongoFilter(f)
	assert.Equal(t, bson.M{"$gte": 18}, out["age"])
	assert.Equal(t, "42", out["_id"])
}
