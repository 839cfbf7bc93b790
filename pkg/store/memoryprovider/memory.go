// Package memoryprovider is the reference Provider implementation: a
// mutex-guarded, two-level map from collection name to (id -> document).
// Every other back-end must behave indistinguishably under the contract;
// this one defines the canonical semantics.
package memoryprovider

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/idgen"
)

// entry pairs a stored document with the sequence number it was inserted
// under, so Query can fall back to insertion order when a sort leaves ties
// (spec §4.1) — map iteration order in Go is randomized, so without this
// a query with no sortBy would return a different order on every call.
type entry struct {
	seq int
	doc store.Document
}

// Provider is the in-memory reference Provider. The zero value is not
// usable; construct with New.
type Provider struct {
	*store.BaseLifecycle

	mu          sync.Mutex
	collections map[string]map[string]*entry
	nextSeq     int

	inTx bool
}

// New returns a disconnected memory provider.
func New() *Provider {
	return &Provider{BaseLifecycle: store.NewBaseLifecycle("memory")}
}

func (p *Provider) Connect(ctx context.Context) error {
	if !p.BeginConnect() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collections = make(map[string]map[string]*entry)
	p.nextSeq = 0
	return nil
}

// Disconnect clears all storage, matching spec §4.4.
func (p *Provider) Disconnect(ctx context.Context) error {
	if !p.BeginDisconnect() {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collections = nil
	return nil
}

func (p *Provider) Create(ctx context.Context, col string, doc store.Document) (store.Document, error) {
	const op = "memoryprovider.Create"
	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	id := doc.ID()
	if id == "" {
		id = idgen.New()
	} else if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	stored := doc.WithID(id)

	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.collections[col]
	if !ok {
		c = make(map[string]*entry)
		p.collections[col] = c
	}
	// The memory provider is the back-end spec §3 explicitly allows to
	// replace silently on a duplicate id; every other provider must fail.
	p.nextSeq++
	c[id] = &entry{seq: p.nextSeq, doc: store.CloneDocument(stored)}
	return store.CloneDocument(stored), nil
}

func (p *Provider) Read(ctx context.Context, col, id string) (store.Document, error) {
	const op = "memoryprovider.Read"
	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.collections[col][id]
	if !ok {
		return nil, nil
	}
	return store.CloneDocument(e.doc), nil
}

func (p *Provider) Update(ctx context.Context, col, id string, partial store.Document) (store.Document, error) {
	const op = "memoryprovider.Update"
	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.collections[col]
	if !ok {
		return nil, nil
	}
	e, ok := c[id]
	if !ok {
		return nil, nil
	}

	merged := make(store.Document, len(e.doc)+len(partial))
	for k, v := range e.doc {
		merged[k] = v
	}
	for k, v := range partial {
		if k == "id" {
			continue // id is immutable (spec §3)
		}
		merged[k] = v
	}
	merged["id"] = id

	e.doc = store.CloneDocument(merged)
	return store.CloneDocument(e.doc), nil
}

func (p *Provider) Delete(ctx context.Context, col, id string) (bool, error) {
	const op = "memoryprovider.Delete"
	if err := store.ValidateCollection(op, col); err != nil {
		return false, err
	}
	if err := store.ValidateID(op, id); err != nil {
		return false, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.collections[col]
	if !ok {
		return false, nil
	}
	if _, ok := c[id]; !ok {
		return false, nil
	}
	delete(c, id)
	return true, nil
}

func (p *Provider) Query(ctx context.Context, col string, opts store.QueryOptions) ([]store.Document, error) {
	const op = "memoryprovider.Query"
	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	p.mu.Lock()
	entries := make([]*entry, 0, len(p.collections[col]))
	for _, e := range p.collections[col] {
		entries = append(entries, e)
	}
	p.mu.Unlock()

	// Stable-sort by insertion sequence first so that, absent an explicit
	// sortBy, results are deterministic across calls (plain map iteration
	// is not).
	sortEntriesBySeq(entries)

	items := make([]store.Document, len(entries))
	for i, e := range entries {
		items[i] = store.CloneDocument(e.doc)
	}

	return store.RunQuery(items, opts), nil
}

func sortEntriesBySeq(entries []*entry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].seq < entries[j-1].seq; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// BeginTransaction, Commit, and Rollback: the memory provider has no
// native transaction support. A begin/commit/rollback triple around pure
// in-memory mutations is a no-op rather than Unsupported, since every
// mutation is already atomic under the provider's mutex; this keeps
// callers that wrap arbitrary providers transaction-agnostic working
// against the reference back-end too.
func (p *Provider) BeginTransaction(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inTx {
		return store.Errorf(store.KindTransaction, "memoryprovider.BeginTransaction", "transaction already in progress")
	}
	p.inTx = true
	return nil
}

func (p *Provider) Commit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.inTx {
		return store.Errorf(store.KindTransaction, "memoryprovider.Commit", "no transaction in progress")
	}
	p.inTx = false
	return nil
}

func (p *Provider) Rollback(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.inTx {
		return store.Errorf(store.KindTransaction, "memoryprovider.Rollback", "no transaction in progress")
	}
	p.inTx = false
	return nil
}

// EnsureSchema is a no-op: the memory provider infers nothing and enforces
// nothing ahead of time.
func (p *Provider) EnsureSchema(ctx context.Context, col string, def *store.SchemaDefinition) error {
	return store.ValidateCollection("memoryprovider.EnsureSchema", col)
}

// EnsureIndex is unsupported: there is no index structure to build over a
// plain map.
func (p *Provider) EnsureIndex(ctx context.Context, col string, def store.IndexDefinition) error {
	return store.NewError(store.KindUnsupported, "memoryprovider.EnsureIndex", nil)
}

var _ store.Provider = (*Provider)(nil)
