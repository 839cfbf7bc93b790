// Package relational stores each collection as a table in an embedded SQL
// engine (sqlite, postgres, mysql, or sqlserver via gorm's dialectors),
// inferring and evolving the table's columns from the documents written
// to it and translating the abstract query algebra into parameterized
// SQL (spec §4.6).
package relational

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/polystore/pkg/metrics"
	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/idgen"
	"gorm.io/gorm"
)

// Provider is the relational (embedded SQL) Provider.
type Provider struct {
	*store.BaseLifecycle

	cfg Config
	db  *gorm.DB

	mu     sync.Mutex
	tables map[string]*tableState

	txMu sync.Mutex
	tx   *gorm.DB // non-nil while a transaction is active
}

// New returns a disconnected relational provider for cfg.
func New(cfg Config) *Provider {
	return &Provider{
		BaseLifecycle: store.NewBaseLifecycle("relational"),
		cfg:           cfg,
		tables:        make(map[string]*tableState),
	}
}

func (p *Provider) Connect(ctx context.Context) error {
	if !p.BeginConnect() {
		return nil
	}
	dialector, err := buildDialector(p.cfg.Driver, p.cfg.DSN)
	if err != nil {
		return store.NewError(store.KindConfiguration, "relational.Connect", err)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return store.NewError(store.KindConnection, "relational.Connect", err)
	}
	p.db = db

	if p.cfg.ForeignKeys && p.cfg.Driver == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return store.NewError(store.KindConnection, "relational.Connect", err)
		}
	}
	return nil
}

func (p *Provider) Disconnect(ctx context.Context) error {
	if !p.BeginDisconnect() {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return store.NewError(store.KindConnection, "relational.Disconnect", err)
	}
	if err := sqlDB.Close(); err != nil {
		return store.NewError(store.KindConnection, "relational.Disconnect", err)
	}
	return nil
}

// activeDB returns the transaction handle if one is open, else the base
// connection — every operation below goes through this so it transparently
// joins an in-flight transaction (spec §4.6: "only one in-flight
// transaction at a time per provider instance").
func (p *Provider) activeDB() *gorm.DB {
	p.txMu.Lock()
	defer p.txMu.Unlock()
	if p.tx != nil {
		return p.tx
	}
	return p.db
}

func (p *Provider) Create(ctx context.Context, col string, doc store.Document) (store.Document, error) {
	const op = "relational.Create"
	defer metrics.ObserveProviderOp("relational", "create", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	ts, err := p.ensureTable(col)
	if err != nil {
		return nil, err
	}

	id := doc.ID()
	if id == "" {
		id = idgen.New()
	} else if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	stored := doc.WithID(id)

	if err := p.ensureColumns(col, ts, stored); err != nil {
		return nil, err
	}

	cols := []string{"id"}
	vals := []any{id}
	for field, v := range stored {
		if field == "id" {
			continue
		}
		enc, err := encodeValue(v)
		if err != nil {
			return nil, store.NewError(store.KindQuery, op, err)
		}
		cols = append(cols, field)
		vals = append(vals, enc)
	}

	quotedTable := quoteIdent(p.cfg.Driver, col)
	quotedCols := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quotedCols[i] = quoteIdent(p.cfg.Driver, c)
		placeholders[i] = placeholder(p.cfg.Driver, i+1)
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quotedTable,
		joinStrings(quotedCols), joinStrings(placeholders))

	if err := p.activeDB().Exec(insertSQL, vals...).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, store.NewDuplicateKeyError(op, col, id)
		}
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return store.CloneDocument(stored), nil
}

func (p *Provider) Read(ctx context.Context, col, id string) (store.Document, error) {
	const op = "relational.Read"
	defer metrics.ObserveProviderOp("relational", "read", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	ts, err := p.ensureTable(col)
	if err != nil {
		return nil, err
	}

	columns := p.snapshotColumns(ts)
	query, args, err := buildSelect(p.cfg.Driver, col, columns, store.QueryOptions{
		Filters: store.Filter{"id": {Value: id}},
	})
	if err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}

	docs, err := p.runSelect(query, args, ts)
	if err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (p *Provider) Update(ctx context.Context, col, id string, partial store.Document) (store.Document, error) {
	const op = "relational.Update"
	defer metrics.ObserveProviderOp("relational", "update", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	existing, err := p.Read(ctx, col, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	ts, err := p.ensureTable(col)
	if err != nil {
		return nil, err
	}
	if err := p.ensureColumns(col, ts, partial); err != nil {
		return nil, err
	}

	if len(partial) == 0 {
		return existing, nil // empty partial is a no-op (spec §8)
	}

	var sets []string
	var vals []any
	n := 0
	for field, v := range partial {
		if field == "id" {
			continue
		}
		enc, err := encodeValue(v)
		if err != nil {
			return nil, store.NewError(store.KindQuery, op, err)
		}
		n++
		sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(p.cfg.Driver, field), placeholder(p.cfg.Driver, n)))
		vals = append(vals, enc)
	}
	if len(sets) == 0 {
		return existing, nil
	}
	n++
	vals = append(vals, id)

	quotedTable := quoteIdent(p.cfg.Driver, col)
	idCol := quoteIdent(p.cfg.Driver, "id")
	updateSQL := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s", quotedTable,
		joinStrings(sets), idCol, placeholder(p.cfg.Driver, n))

	if err := p.activeDB().Exec(updateSQL, vals...).Error; err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return p.Read(ctx, col, id)
}

func (p *Provider) Delete(ctx context.Context, col, id string) (bool, error) {
	const op = "relational.Delete"
	defer metrics.ObserveProviderOp("relational", "delete", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return false, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return false, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return false, err
	}

	if _, err := p.ensureTable(col); err != nil {
		return false, err
	}

	quotedTable := quoteIdent(p.cfg.Driver, col)
	idCol := quoteIdent(p.cfg.Driver, "id")
	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", quotedTable, idCol, placeholder(p.cfg.Driver, 1))

	result := p.activeDB().Exec(deleteSQL, id)
	if result.Error != nil {
		return false, store.NewError(store.KindQuery, op, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (p *Provider) Query(ctx context.Context, col string, opts store.QueryOptions) ([]store.Document, error) {
	const op = "relational.Query"
	defer metrics.ObserveProviderOp("relational", "query", time.Now())

	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	ts, err := p.ensureTable(col)
	if err != nil {
		return nil, err
	}

	columns := p.snapshotColumns(ts)
	query, args, err := buildSelect(p.cfg.Driver, col, columns, opts)
	if err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}

	docs, err := p.runSelect(query, args, ts)
	if err != nil {
		return nil, store.NewError(store.KindQuery, op, err)
	}
	return docs, nil
}

func (p *Provider) snapshotColumns(ts *tableState) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	cols := make([]string, 0, len(ts.columns)+1)
	cols = append(cols, "id")
	for c := range ts.columns {
		cols = append(cols, c)
	}
	return cols
}

func (p *Provider) runSelect(query string, args []any, ts *tableState) ([]store.Document, error) {
	rows, err := p.activeDB().Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var docs []store.Document
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		doc := make(store.Document, len(cols))
		for i, c := range cols {
			if c == "id" {
				s, _ := asString(raw[i])
				doc["id"] = s
				continue
			}
			if raw[i] == nil {
				doc[c] = nil
				continue
			}
			doc[c] = decodeValue(raw[i])
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (p *Provider) BeginTransaction(ctx context.Context) error {
	p.txMu.Lock()
	defer p.txMu.Unlock()
	if p.tx != nil {
		return store.Errorf(store.KindTransaction, "relational.BeginTransaction", "transaction already in progress")
	}
	p.tx = p.db.Begin()
	if p.tx.Error != nil {
		err := p.tx.Error
		p.tx = nil
		return store.NewError(store.KindTransaction, "relational.BeginTransaction", err)
	}
	return nil
}

func (p *Provider) Commit(ctx context.Context) error {
	p.txMu.Lock()
	defer p.txMu.Unlock()
	if p.tx == nil {
		return store.Errorf(store.KindTransaction, "relational.Commit", "no transaction in progress")
	}
	err := p.tx.Commit().Error
	p.tx = nil
	if err != nil {
		return store.NewError(store.KindTransaction, "relational.Commit", err)
	}
	return nil
}

func (p *Provider) Rollback(ctx context.Context) error {
	p.txMu.Lock()
	defer p.txMu.Unlock()
	if p.tx == nil {
		return store.Errorf(store.KindTransaction, "relational.Rollback", "no transaction in progress")
	}
	err := p.tx.Rollback().Error
	p.tx = nil
	if err != nil {
		return store.NewError(store.KindTransaction, "relational.Rollback", err)
	}
	return nil
}

func (p *Provider) EnsureSchema(ctx context.Context, col string, def *store.SchemaDefinition) error {
	const op = "relational.EnsureSchema"
	if err := store.ValidateCollection(op, col); err != nil {
		return err
	}
	ts, err := p.ensureTable(col)
	if err != nil {
		return err
	}
	if def == nil {
		return nil
	}
	doc := make(store.Document, len(def.Fields))
	for _, f := range def.Fields {
		doc[f.Name] = "" // placeholder value purely to drive affinity inference as TEXT
	}
	return p.ensureColumns(col, ts, doc)
}

// EnsureIndex issues CREATE [UNIQUE] INDEX IF NOT EXISTS per spec §4.6.
func (p *Provider) EnsureIndex(ctx context.Context, col string, def store.IndexDefinition) error {
	const op = "relational.EnsureIndex"
	if err := store.ValidateCollection(op, col); err != nil {
		return err
	}
	if len(def.Fields) == 0 {
		return store.Errorf(store.KindConfiguration, op, "index %q declares no fields", def.Name)
	}
	if _, err := p.ensureTable(col); err != nil {
		return err
	}

	unique := ""
	if def.Unique {
		unique = "UNIQUE "
	}
	quotedCols := make([]string, len(def.Fields))
	for i, f := range def.Fields {
		quotedCols[i] = quoteIdent(p.cfg.Driver, f)
	}
	indexName := def.Name
	if indexName == "" {
		indexName = col + "_" + joinStrings(def.Fields) + "_idx"
	}
	ddl := fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique, quoteIdent(p.cfg.Driver, indexName), quoteIdent(p.cfg.Driver, col), joinStrings(quotedCols))

	if err := p.activeDB().Exec(ddl).Error; err != nil {
		return store.NewError(store.KindQuery, op, err)
	}
	return nil
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

// isUniqueViolation is a best-effort, driver-agnostic check: the four
// supported dialects each phrase primary-key conflicts differently and
// gorm does not normalize this into a typed error, so this falls back to
// substring matching on the driver's message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, needle := range []string{"UNIQUE constraint", "duplicate key", "Duplicate entry", "violates unique"} {
		if containsFold(msg, needle) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexFold(haystack, needle) >= 0
}

func indexFold(haystack, needle string) int {
	hl, nl := len(haystack), len(needle)
	if nl == 0 {
		return 0
	}
	for i := 0; i+nl <= hl; i++ {
		if equalFold(haystack[i:i+nl], needle) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

var _ store.Provider = (*Provider)(nil)
