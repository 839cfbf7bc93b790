package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

var queryFlags struct {
	filters []string
	sorts   []string
	limit   int
	offset  int
}

var queryCmd = &cobra.Command{
	Use:   "query <collection>",
	Short: "Query a collection with filters, sorting, and pagination",
	Long: `Query a collection with filters, sorting, and pagination.

  --filter field=op:value   e.g. --filter value=gt:150, --filter name=ada (op defaults to eq)
  --sort field:asc|desc     repeatable; earlier flags take precedence on ties
  --limit N --offset N      pagination, applied after sorting`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := buildProvider(ctx)
		if err != nil {
			return err
		}
		defer p.Disconnect(ctx)

		opts, err := buildQueryOptions()
		if err != nil {
			return err
		}

		docs, err := p.Query(ctx, args[0], opts)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		return printJSON(docs)
	},
}

func init() {
	queryCmd.Flags().StringArrayVar(&queryFlags.filters, "filter", nil, "field=op:value, repeatable")
	queryCmd.Flags().StringArrayVar(&queryFlags.sorts, "sort", nil, "field:asc|desc, repeatable")
	queryCmd.Flags().IntVar(&queryFlags.limit, "limit", -1, "max results (-1 means unbounded)")
	queryCmd.Flags().IntVar(&queryFlags.offset, "offset", -1, "skip this many results before limiting (-1 means none)")
}

func buildQueryOptions() (store.QueryOptions, error) {
	var opts store.QueryOptions

	if len(queryFlags.filters) > 0 {
		filters := make(store.Filter, len(queryFlags.filters))
		for _, raw := range queryFlags.filters {
			field, cond, err := parseFilter(raw)
			if err != nil {
				return opts, err
			}
			filters[field] = cond
		}
		opts.Filters = filters
	}

	for _, raw := range queryFlags.sorts {
		sortOpt, err := parseSort(raw)
		if err != nil {
			return opts, err
		}
		opts.SortBy = append(opts.SortBy, sortOpt)
	}

	if queryFlags.limit >= 0 {
		opts.Limit = &queryFlags.limit
	}
	if queryFlags.offset >= 0 {
		opts.Offset = &queryFlags.offset
	}
	return opts, nil
}

// parseFilter accepts "field=op:value" (op one of eq/ne/gt/gte/lt/lte/
// in/nin/regex) or the equality shorthand "field=value".
func parseFilter(raw string) (string, store.Condition, error) {
	field, rest, ok := strings.Cut(raw, "=")
	if !ok {
		return "", store.Condition{}, fmt.Errorf("invalid --filter %q: want field=op:value", raw)
	}

	op, value, hasOp := strings.Cut(rest, ":")
	if !hasOp {
		return field, store.Condition{Op: store.OpEq, Value: coerce(rest)}, nil
	}
	switch store.Op(op) {
	case store.OpEq, store.OpNe, store.OpGt, store.OpGte, store.OpLt, store.OpLte, store.OpRegex:
		return field, store.Condition{Op: store.Op(op), Value: coerce(value)}, nil
	case store.OpIn, store.OpNin:
		items := strings.Split(value, ",")
		values := make([]any, 0, len(items))
		for _, item := range items {
			if item == "" {
				continue
			}
			values = append(values, coerce(item))
		}
		return field, store.Condition{Op: store.Op(op), Value: values}, nil
	default:
		return "", store.Condition{}, fmt.Errorf("invalid --filter %q: unknown operator %q", raw, op)
	}
}

func parseSort(raw string) (store.SortOption, error) {
	field, dir, ok := strings.Cut(raw, ":")
	if !ok || field == "" {
		return store.SortOption{}, fmt.Errorf("invalid --sort %q: want field:asc|desc", raw)
	}
	switch store.SortDirection(dir) {
	case store.Asc, store.Desc:
		return store.SortOption{Field: field, Order: store.SortDirection(dir)}, nil
	default:
		return store.SortOption{}, fmt.Errorf("invalid --sort %q: order must be asc or desc", raw)
	}
}

// coerce parses a CLI value as a number when it looks like one, so
// --filter value=gt:150 compares numerically rather than lexically.
func coerce(raw string) any {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}
