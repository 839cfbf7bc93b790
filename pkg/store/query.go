package store

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shashiranjanraj/polystore/pkg/collection"
)

// ApplyFilters returns the subset of items for which every entry in
// filters passes, per the operator table in spec §4.1. A missing field
// fails eq/ordered comparisons, passes ne, and is treated as not-present
// for in/nin.
func ApplyFilters(items []Document, filters Filter) []Document {
	if len(filters) == 0 {
		return items
	}
	return collection.Filter(items, func(item Document) bool {
		return matchesFilters(item, filters)
	})
}

func matchesFilters(item Document, filters Filter) bool {
	for field, cond := range filters {
		v, present := item[field]
		if !matchesCondition(v, present, cond) {
			return false
		}
	}
	return true
}

func matchesCondition(v any, present bool, cond Condition) bool {
	op := cond.Op
	if op == "" {
		op = OpEq
	}
	switch op {
	case OpEq:
		return present && compareEqual(v, cond.Value)
	case OpNe:
		return !present || !compareEqual(v, cond.Value)
	case OpGt, OpGte, OpLt, OpLte:
		if !present {
			return false
		}
		return compareOrdered(op, v, cond.Value)
	case OpIn:
		if !present {
			return false
		}
		return sequenceContains(cond.Value, v)
	case OpNin:
		if !present {
			return true
		}
		return !sequenceContains(cond.Value, v)
	case OpRegex:
		if !present {
			return false
		}
		return matchesRegex(cond.Value, v)
	default:
		return false
	}
}

func compareEqual(a, b any) bool {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func compareOrdered(op Op, a, b any) bool {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		switch op {
		case OpGt:
			return af > bf
		case OpGte:
			return af >= bf
		case OpLt:
			return af < bf
		case OpLte:
			return af <= bf
		}
		return false
	}
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	switch op {
	case OpGt:
		return as > bs
	case OpGte:
		return as >= bs
	case OpLt:
		return as < bs
	case OpLte:
		return as <= bs
	}
	return false
}

func sequenceContains(seq any, v any) bool {
	switch s := seq.(type) {
	case []any:
		for _, item := range s {
			if compareEqual(item, v) {
				return true
			}
		}
	case []Document:
		for _, item := range s {
			if compareEqual(item, v) {
				return true
			}
		}
	case []string:
		for _, item := range s {
			if compareEqual(item, v) {
				return true
			}
		}
	}
	return false
}

func matchesRegex(pattern any, v any) bool {
	p, ok := pattern.(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile("(?i)" + p)
	if err != nil {
		return false
	}
	return re.MatchString(fmt.Sprintf("%v", v))
}

// toFloat64 normalizes the numeric Go types a document field may hold
// (int, int64, float64, json.Number-decoded float64) to a common type so
// ordered comparisons work regardless of how the value was constructed.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// ApplySorting stable-sorts items by sortBy, each entry breaking ties left
// by the previous one; equal keys across every entry preserve input order.
func ApplySorting(items []Document, sortBy []SortOption) []Document {
	if len(sortBy) == 0 {
		return items
	}
	out := make([]Document, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		for _, s := range sortBy {
			cmp := compareField(out[i][s.Field], out[j][s.Field])
			if cmp == 0 {
				continue
			}
			if s.Order == Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return out
}

// compareField returns -1, 0, or 1 using numeric comparison when both sides
// parse as numbers, falling back to string comparison otherwise.
func compareField(a, b any) int {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	return strings.Compare(as, bs)
}

// ApplyPagination drops the first offset items then keeps at most limit.
// A nil limit means unbounded; offset beyond the slice yields an empty
// result; limit of 0 yields an empty result.
func ApplyPagination(items []Document, offset, limit *int) []Document {
	off := 0
	if offset != nil {
		off = *offset
	}
	if off < 0 {
		off = 0
	}
	if off >= len(items) {
		return []Document{}
	}
	items = items[off:]

	if limit == nil {
		return items
	}
	lim := *limit
	if lim < 0 {
		lim = 0
	}
	if lim > len(items) {
		lim = len(items)
	}
	return items[:lim]
}

// RunQuery composes ApplyFilters, ApplySorting, and ApplyPagination in
// spec order, the shape every in-memory-capable provider calls after
// gathering its raw collection snapshot.
func RunQuery(items []Document, opts QueryOptions) []Document {
	items = ApplyFilters(items, opts.Filters)
	items = ApplySorting(items, opts.SortBy)
	items = ApplyPagination(items, opts.Offset, opts.Limit)
	return items
}
