package store

import "context"

// Document is a self-describing key/value mapping. The reserved key "id"
// holds the document's identifier within its collection. Values follow
// encoding/json's decoding shape (nil, bool, float64, string, []any,
// map[string]any) plus whatever concrete Go types callers build documents
// from directly (int, int64, time.Time, ...); ApplyFilters and the
// relational provider normalize across both.
type Document map[string]any

// ID returns the document's "id" field as a string, or "" if absent or not
// a string.
func (d Document) ID() string {
	v, _ := d["id"].(string)
	return v
}

// WithID returns a shallow copy of d with "id" set. Used internally so
// callers' maps are never mutated in place.
func (d Document) WithID(id string) Document {
	out := make(Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	out["id"] = id
	return out
}

// Op is a filter comparison operator (spec §4.1).
type Op string

const (
	OpEq    Op = "eq"
	OpNe    Op = "ne"
	OpGt    Op = "gt"
	OpGte   Op = "gte"
	OpLt    Op = "lt"
	OpLte   Op = "lte"
	OpIn    Op = "in"
	OpNin   Op = "nin"
	OpRegex Op = "regex"
)

// Condition is one filter entry's right-hand side. A nil Op means "treat
// Value as an equality test" (the primitive-condition shorthand).
type Condition struct {
	Op    Op
	Value any
}

// Filter maps field name to the condition it must satisfy. All entries are
// ANDed together.
type Filter map[string]Condition

// SortDirection is "asc" or "desc".
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortOption is one entry of a multi-key sort.
type SortOption struct {
	Field string
	Order SortDirection
}

// QueryOptions is the shared query-option surface every provider accepts.
type QueryOptions struct {
	Filters Filter
	SortBy  []SortOption
	Limit   *int
	Offset  *int
}

// QueryPage adds pagination bookkeeping on top of a plain result set:
// total count alongside the page actually returned.
type QueryPage struct {
	Items   []Document
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// SchemaField describes one field for ensureSchema, used by back-ends that
// need an explicit declaration (relational) and ignored by ones that don't
// (memory, file).
type SchemaField struct {
	Name     string
	Required bool
}

// SchemaDefinition is the optional argument to ensureSchema.
type SchemaDefinition struct {
	Fields []SchemaField
}

// IndexDefinition is the argument to ensureIndex.
type IndexDefinition struct {
	Name   string
	Fields []string
	Unique bool
}

// Provider is the single polymorphism point: every back-end (memory, file,
// relational, document, object-store, browser-db, and the git-sync
// decorator wrapping any of them) implements this contract identically.
// Operations not meaningful for a given back-end return an Unsupported
// *StoreError rather than failing silently.
type Provider interface {
	// Connect establishes the medium. Idempotent: calling it while already
	// connected is a logged no-op, not an error.
	Connect(ctx context.Context) error
	// Disconnect tears down the medium, flushing any pending writes first.
	// Idempotent: calling it while already disconnected is a logged no-op.
	Disconnect(ctx context.Context) error
	// IsConnected never fails.
	IsConnected() bool

	// Create stores doc in collection col. If doc has no "id", one is
	// generated. Returns the stored document (a deep copy, id populated).
	Create(ctx context.Context, col string, doc Document) (Document, error)
	// Read returns a deep copy of the document with the given id, or nil if
	// none exists.
	Read(ctx context.Context, col, id string) (Document, error)
	// Update shallow-merges partial over the existing document, preserving
	// id. Returns the merged document, or nil if id does not exist.
	Update(ctx context.Context, col, id string, partial Document) (Document, error)
	// Delete removes the document with the given id. Returns whether
	// anything was removed.
	Delete(ctx context.Context, col, id string) (bool, error)
	// Query returns deep copies of every document in col matching opts.
	Query(ctx context.Context, col string, opts QueryOptions) ([]Document, error)

	// BeginTransaction, Commit, and Rollback bracket a native transaction.
	// Back-ends without transaction support return Unsupported.
	BeginTransaction(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// EnsureSchema declares a collection's shape ahead of first write. def
	// may be nil for back-ends that infer schema lazily.
	EnsureSchema(ctx context.Context, col string, def *SchemaDefinition) error
	// EnsureIndex creates an index if it does not already exist.
	EnsureIndex(ctx context.Context, col string, def IndexDefinition) error
}
