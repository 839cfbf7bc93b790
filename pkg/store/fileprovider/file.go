// Package fileprovider persists collections as JSON on disk: either one
// file per collection (split layout) or a single aggregate file. An
// in-memory mirror backs every read/write/query; persistence happens
// out-of-band through a per-collection debounce timer, matching spec
// §4.5.
package fileprovider

import (
	"context"
	"sync"
	"time"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/idgen"
)

func durationMs(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// Config selects the file provider's on-disk layout and durability
// tuning, per spec §6's configuration-shapes table.
type Config struct {
	DirectoryPath   string
	UseSingleFile   bool
	PrettyPrint     bool
	WriteDebounceMs int
	LockRetries     int
	LockTimeoutMs   int
}

func (c Config) withDefaults() Config {
	if c.WriteDebounceMs <= 0 {
		c.WriteDebounceMs = 300
	}
	if c.LockRetries <= 0 {
		c.LockRetries = 20
	}
	if c.LockTimeoutMs <= 0 {
		c.LockTimeoutMs = 10_000
	}
	return c
}

// Provider is the JSON file-backed Provider.
type Provider struct {
	*store.BaseLifecycle

	cfg Config

	mu     sync.Mutex
	mirror map[string]map[string]store.Document

	debounce *debouncer
	inTx     bool
}

// New returns a disconnected file provider for cfg.
func New(cfg Config) *Provider {
	cfg = cfg.withDefaults()
	p := &Provider{
		BaseLifecycle: store.NewBaseLifecycle("file"),
		cfg:           cfg,
	}
	p.debounce = newDebouncer(durationMs(cfg.WriteDebounceMs), p.flushCollection)
	return p
}

func (p *Provider) Connect(ctx context.Context) error {
	if !p.BeginConnect() {
		return nil
	}
	p.mu.Lock()
	p.mirror = make(map[string]map[string]store.Document)
	p.mu.Unlock()

	if err := p.loadAll(); err != nil {
		return store.NewError(store.KindConnection, "fileprovider.Connect", err)
	}
	return nil
}

// Disconnect flushes every dirty collection before releasing resources —
// the sole guaranteed flush point (spec §5).
func (p *Provider) Disconnect(ctx context.Context) error {
	if !p.BeginDisconnect() {
		return nil
	}
	if err := p.debounce.flushAllNow(); err != nil {
		return store.NewError(store.KindConnection, "fileprovider.Disconnect", err)
	}
	return nil
}

func (p *Provider) Create(ctx context.Context, col string, doc store.Document) (store.Document, error) {
	const op = "fileprovider.Create"
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
	c, ok := p.mirror[col]
	if !ok {
		c = make(map[string]store.Document)
		p.mirror[col] = c
	}
	if _, exists := c[id]; exists {
		p.mu.Unlock()
		return nil, store.NewDuplicateKeyError(op, col, id)
	}
	c[id] = store.CloneDocument(stored)
	p.mu.Unlock()

	p.debounce.mark(col)
	return store.CloneDocument(stored), nil
}

func (p *Provider) Read(ctx context.Context, col, id string) (store.Document, error) {
	const op = "fileprovider.Read"
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
	doc, ok := p.mirror[col][id]
	if !ok {
		return nil, nil
	}
	return store.CloneDocument(doc), nil
}

func (p *Provider) Update(ctx context.Context, col, id string, partial store.Document) (store.Document, error) {
	const op = "fileprovider.Update"
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
	c, ok := p.mirror[col]
	if !ok {
		p.mu.Unlock()
		return nil, nil
	}
	existing, ok := c[id]
	if !ok {
		p.mu.Unlock()
		return nil, nil
	}

	merged := make(store.Document, len(existing)+len(partial))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		merged[k] = v
	}
	merged["id"] = id
	c[id] = store.CloneDocument(merged)
	p.mu.Unlock()

	p.debounce.mark(col)
	return store.CloneDocument(merged), nil
}

func (p *Provider) Delete(ctx context.Context, col, id string) (bool, error) {
	const op = "fileprovider.Delete"
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
	c, ok := p.mirror[col]
	if !ok {
		p.mu.Unlock()
		return false, nil
	}
	if _, ok := c[id]; !ok {
		p.mu.Unlock()
		return false, nil
	}
	delete(c, id)
	p.mu.Unlock()

	p.debounce.mark(col)
	return true, nil
}

func (p *Provider) Query(ctx context.Context, col string, opts store.QueryOptions) ([]store.Document, error) {
	const op = "fileprovider.Query"
	if err := store.ValidateCollection(op, col); err != nil {
		return nil, err
	}
	if err := store.ValidateConnected(op, p); err != nil {
		return nil, err
	}

	p.mu.Lock()
	c := p.mirror[col]
	items := make([]store.Document, 0, len(c))
	for _, doc := range c {
		items = append(items, store.CloneDocument(doc))
	}
	p.mu.Unlock()

	return store.RunQuery(items, opts), nil
}

// BeginTransaction/Commit/Rollback: the file provider has no native
// transaction support distinct from its debounce queue; see memoryprovider
// for why a begin/commit/rollback triple is a guarded no-op rather than
// Unsupported.
func (p *Provider) BeginTransaction(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inTx {
		return store.Errorf(store.KindTransaction, "fileprovider.BeginTransaction", "transaction already in progress")
	}
	p.inTx = true
	return nil
}

func (p *Provider) Commit(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.inTx {
		return store.Errorf(store.KindTransaction, "fileprovider.Commit", "no transaction in progress")
	}
	p.inTx = false
	return nil
}

func (p *Provider) Rollback(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.inTx {
		return store.Errorf(store.KindTransaction, "fileprovider.Rollback", "no transaction in progress")
	}
	p.inTx = false
	return nil
}

func (p *Provider) EnsureSchema(ctx context.Context, col string, def *store.SchemaDefinition) error {
	return store.ValidateCollection("fileprovider.EnsureSchema", col)
}

func (p *Provider) EnsureIndex(ctx context.Context, col string, def store.IndexDefinition) error {
	return store.NewError(store.KindUnsupported, "fileprovider.EnsureIndex", nil)
}

var _ store.Provider = (*Provider)(nil)
