package relational

import (
	"fmt"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

// buildDialector mirrors pkg/database's driver switch, generalized so
// Config.Driver selects the same four dialects instead of one global
// connection (see DESIGN.md).
func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite", "":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("relational: unsupported driver %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}

// quoteIdent quotes a table or column name using the target dialect's
// identifier quoting so user-provided collection/field names never need
// escaping logic of their own (they're already restricted to path-separator
// free strings by store.ValidateCollection/ValidateID, but field names come
// straight from caller documents).
func quoteIdent(driver, name string) string {
	switch driver {
	case "mysql":
		return "`" + name + "`"
	case "sqlserver":
		return "[" + name + "]"
	default: // sqlite, postgres
		return `"` + name + `"`
	}
}

// placeholder returns the n-th (1-indexed) bound-parameter placeholder for
// driver. Postgres uses $1,$2,...; the others accept positional "?".
func placeholder(driver string, n int) string {
	if driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// columnAffinity infers a column's storage affinity from a Go value's
// runtime type, per spec §4.6:
//
//	integer number -> integer affinity
//	other number   -> real affinity
//	boolean        -> integer affinity
//	null           -> text affinity (a nullable TEXT column; the column
//	                  keeps TEXT when later values are non-null)
//	mapping/slice  -> text affinity (JSON)
//	anything else  -> text affinity
type affinity string

const (
	affinityInteger affinity = "INTEGER"
	affinityReal    affinity = "REAL"
	affinityText    affinity = "TEXT"
)

func columnAffinity(v any) affinity {
	switch v.(type) {
	case nil:
		return affinityText
	case bool:
		return affinityInteger
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return affinityInteger
	case float32, float64:
		return affinityReal
	case map[string]any, []any, store.Document:
		return affinityText
	default:
		return affinityText
	}
}
