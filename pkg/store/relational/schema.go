package relational

import (
	"fmt"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

// tableState tracks what the provider itself has created or altered
// during its connected lifetime (spec §3: "the provider owns all stored
// state for its lifetime"), so repeat inserts skip redundant DDL.
type tableState struct {
	exists  bool
	columns map[string]affinity // column name -> inferred affinity, "id" excluded
}

// ensureTable creates the collection's backing table on first use. Schema
// is inferred lazily: a bare id-primary-key table with no other columns
// yet, matching "collection created on first write" (spec §3).
func (p *Provider) ensureTable(col string) (*tableState, error) {
	p.mu.Lock()
	ts, ok := p.tables[col]
	p.mu.Unlock()
	if ok {
		return ts, nil
	}

	quotedTable := quoteIdent(p.cfg.Driver, col)
	idCol := quoteIdent(p.cfg.Driver, "id")
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY)", quotedTable, idCol)
	if err := p.db.Exec(ddl).Error; err != nil {
		return nil, store.NewError(store.KindQuery, "relational.ensureTable", err)
	}

	ts = &tableState{exists: true, columns: make(map[string]affinity)}
	p.mu.Lock()
	p.tables[col] = ts
	p.mu.Unlock()
	return ts, nil
}

// ensureColumns detects top-level fields in doc not yet present in ts and
// ALTER TABLE ADD COLUMNs them with an inferred affinity (spec §4.6).
func (p *Provider) ensureColumns(col string, ts *tableState, doc store.Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for field, value := range doc {
		if field == "id" {
			continue
		}
		if _, known := ts.columns[field]; known {
			continue
		}

		aff := columnAffinity(value)
		ddl := addColumnDDL(p.cfg.Driver, col, field, aff)
		if err := p.db.Exec(ddl).Error; err != nil {
			return store.NewError(store.KindQuery, "relational.ensureColumns", err)
		}
		ts.columns[field] = aff
	}
	return nil
}

func addColumnDDL(driver, table, column string, aff affinity) string {
	quotedTable := quoteIdent(driver, table)
	quotedCol := quoteIdent(driver, column)
	verb := "ADD COLUMN"
	if driver == "sqlserver" {
		verb = "ADD"
	}
	return fmt.Sprintf("ALTER TABLE %s %s %s %s", quotedTable, verb, quotedCol, aff)
}
