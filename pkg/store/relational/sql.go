package relational

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

// paramSeq hands out driver-appropriate placeholders in sequence while
// collecting the bound values, so every filter/sort/page clause binds
// parameters rather than interpolating values into SQL text (spec §4.6).
type paramSeq struct {
	driver string
	n      int
	args   []any
}

func (p *paramSeq) next(v any) string {
	p.n++
	p.args = append(p.args, v)
	return placeholder(p.driver, p.n)
}

// buildSelect composes the full SELECT for a Query call: column list,
// WHERE, ORDER BY, LIMIT/OFFSET.
func buildSelect(driver, table string, columns []string, opts store.QueryOptions) (string, []any, error) {
	quotedTable := quoteIdent(driver, table)
	colList := make([]string, len(columns))
	for i, c := range columns {
		colList[i] = quoteIdent(driver, c)
	}

	seq := &paramSeq{driver: driver}
	where, err := buildWhere(driver, opts.Filters, seq)
	if err != nil {
		return "", nil, err
	}

	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(colList, ", "), quotedTable)
	if where != "" {
		q += " WHERE " + where
	}
	if order := buildOrderBy(driver, opts.SortBy); order != "" {
		q += " ORDER BY " + order
	}
	if opts.Limit != nil {
		q += fmt.Sprintf(" LIMIT %s", seq.next(*opts.Limit))
	}
	if opts.Offset != nil {
		q += fmt.Sprintf(" OFFSET %s", seq.next(*opts.Offset))
	}
	return q, seq.args, nil
}

// buildWhere translates a Filter into a parameterized WHERE clause body
// (without the "WHERE" keyword), ANDing every entry per spec §4.1.
func buildWhere(driver string, filters store.Filter, seq *paramSeq) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	var clauses []string
	for field, cond := range filters {
		clause, err := buildCondition(driver, field, cond, seq)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " AND "), nil
}

func buildCondition(driver, field string, cond store.Condition, seq *paramSeq) (string, error) {
	col := quoteIdent(driver, field)
	op := cond.Op
	if op == "" {
		op = store.OpEq
	}

	switch op {
	case store.OpEq:
		return fmt.Sprintf("%s = %s", col, seq.next(cond.Value)), nil
	case store.OpNe:
		return fmt.Sprintf("%s != %s", col, seq.next(cond.Value)), nil
	case store.OpGt:
		return fmt.Sprintf("%s > %s", col, seq.next(cond.Value)), nil
	case store.OpGte:
		return fmt.Sprintf("%s >= %s", col, seq.next(cond.Value)), nil
	case store.OpLt:
		return fmt.Sprintf("%s < %s", col, seq.next(cond.Value)), nil
	case store.OpLte:
		return fmt.Sprintf("%s <= %s", col, seq.next(cond.Value)), nil
	case store.OpIn:
		items, ok := asAnySlice(cond.Value)
		if !ok || len(items) == 0 {
			// An empty `in` list selects nothing (spec §4.6, §8).
			return "1 = 0", nil
		}
		placeholders := make([]string, len(items))
		for i, item := range items {
			placeholders[i] = seq.next(item)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")), nil
	case store.OpNin:
		items, ok := asAnySlice(cond.Value)
		if !ok || len(items) == 0 {
			// An empty `nin` list adds no predicate (spec §4.6, §8).
			return "1 = 1", nil
		}
		placeholders := make([]string, len(items))
		for i, item := range items {
			placeholders[i] = seq.next(item)
		}
		return fmt.Sprintf("%s NOT IN (%s)", col, strings.Join(placeholders, ", ")), nil
	case store.OpRegex:
		pattern, _ := cond.Value.(string)
		like := regexToLikePattern(pattern)
		return fmt.Sprintf("%s LIKE %s", col, seq.next(like)), nil
	default:
		return "", store.Errorf(store.KindQuery, "relational.buildCondition", "unknown operator %q", op)
	}
}

// regexToLikePattern approximates a regex as a SQL LIKE pattern by
// stripping anchors and converting ".*" to "%" and "." to "_" (spec §4.6).
// This is a simplification, not a regex engine: character classes,
// alternation, quantifiers other than ".*", and escaping are not
// interpreted and pass through literally.
func regexToLikePattern(pattern string) string {
	p := strings.TrimPrefix(pattern, "^")
	p = strings.TrimSuffix(p, "$")
	p = strings.ReplaceAll(p, ".*", "%")
	p = dotToUnderscore.ReplaceAllString(p, "_")
	return p
}

var dotToUnderscore = regexp.MustCompile(`\.`)

func buildOrderBy(driver string, sortBy []store.SortOption) string {
	if len(sortBy) == 0 {
		return ""
	}
	parts := make([]string, len(sortBy))
	for i, s := range sortBy {
		dir := "ASC"
		if s.Order == store.Desc {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("%s %s", quoteIdent(driver, s.Field), dir)
	}
	return strings.Join(parts, ", ")
}

func asAnySlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}
