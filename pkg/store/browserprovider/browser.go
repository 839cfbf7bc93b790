// Package browserprovider is a documented stub for the "browser-db"
// back-end named in the factory's provider type enum. No server-side Go
// process has a browser's IndexedDB to talk to, so every data operation
// returns an Unsupported error; only lifecycle methods do real work, so
// the factory and conformance harness can exercise connect/disconnect
// uniformly across every back-end name.
package browserprovider

import (
	"context"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

// MigrationStrategy names a version-keyed upgrade handler selection. It is
// recorded on Config but never invoked — there is no real upgrade path
// without a browser runtime.
type MigrationStrategy string

// Config mirrors the browser-db option surface from the configuration
// table, recorded for interface completeness.
type Config struct {
	DatabaseName          string
	Version               int
	MigrationStrategy     MigrationStrategy
	AutoCreateCollections bool
}

// Provider is the browser-db stub Provider.
type Provider struct {
	*store.BaseLifecycle
	cfg Config
}

// New returns a disconnected browser-db stub provider for cfg.
func New(cfg Config) *Provider {
	return &Provider{
		BaseLifecycle: store.NewBaseLifecycle("browser"),
		cfg:           cfg,
	}
}

func (p *Provider) Connect(ctx context.Context) error {
	p.BeginConnect()
	return nil
}

func (p *Provider) Disconnect(ctx context.Context) error {
	p.BeginDisconnect()
	return nil
}

func unsupported(op string) error {
	return store.Errorf(store.KindUnsupported, op, "browser-db provider has no server-side medium")
}

func (p *Provider) Create(ctx context.Context, col string, doc store.Document) (store.Document, error) {
	return nil, unsupported("browser.Create")
}

func (p *Provider) Read(ctx context.Context, col, id string) (store.Document, error) {
	return nil, unsupported("browser.Read")
}

func (p *Provider) Update(ctx context.Context, col, id string, partial store.Document) (store.Document, error) {
	return nil, unsupported("browser.Update")
}

func (p *Provider) Delete(ctx context.Context, col, id string) (bool, error) {
	return false, unsupported("browser.Delete")
}

func (p *Provider) Query(ctx context.Context, col string, opts store.QueryOptions) ([]store.Document, error) {
	return nil, unsupported("browser.Query")
}

func (p *Provider) BeginTransaction(ctx context.Context) error { return unsupported("browser.BeginTransaction") }
func (p *Provider) Commit(ctx context.Context) error           { return unsupported("browser.Commit") }
func (p *Provider) Rollback(ctx context.Context) error         { return unsupported("browser.Rollback") }

func (p *Provider) EnsureSchema(ctx context.Context, col string, def *store.SchemaDefinition) error {
	return unsupported("browser.EnsureSchema")
}

func (p *Provider) EnsureIndex(ctx context.Context, col string, def store.IndexDefinition) error {
	return unsupported("browser.EnsureIndex")
}

var _ store.Provider = (*Provider)(nil)
