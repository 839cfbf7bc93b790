package documentprovider

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

// buildMongoFilter translates a store.Filter into a bson.M query document,
// mirroring the relational translator's operator mapping but against
// Mongo's native query operators instead of SQL.
func buildMongoFilter(filters store.Filter) bson.M {
	out := bson.M{}
	for field, cond := range filters {
		key := field
		if field == "id" {
			key = "_id"
		}
		out[key] = buildMongoCondition(cond)
	}
	return out
}

func buildMongoCondition(cond store.Condition) any {
	op := cond.Op
	if op == "" {
		op = store.OpEq
	}
	switch op {
	case store.OpEq:
		return cond.Value
	case store.OpNe:
		return bson.M{"$ne": cond.Value}
	case store.OpGt:
		return bson.M{"$gt": cond.Value}
	case store.OpGte:
		return bson.M{"$gte": cond.Value}
	case store.OpLt:
		return bson.M{"$lt": cond.Value}
	case store.OpLte:
		return bson.M{"$lte": cond.Value}
	case store.OpIn:
		return bson.M{"$in": toSlice(cond.Value)}
	case store.OpNin:
		return bson.M{"$nin": toSlice(cond.Value)}
	case store.OpRegex:
		pattern, _ := cond.Value.(string)
		return bson.M{"$regex": pattern}
	default:
		return cond.Value
	}
}

func buildMongoSort(sortBy []store.SortOption) bson.D {
	if len(sortBy) == 0 {
		return nil
	}
	sort := make(bson.D, len(sortBy))
	for i, s := range sortBy {
		dir := 1
		if s.Order == store.Desc {
			dir = -1
		}
		key := s.Field
		if key == "id" {
			key = "_id"
		}
		sort[i] = bson.E{Key: key, Value: dir}
	}
	return sort
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out
	default:
		return nil
	}
}
