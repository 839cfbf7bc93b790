// Package cachedprovider decorates any store.Provider with a Redis
// read-through cache: Read and Query results are cached and served from
// Redis on a hit, and invalidated whenever a mutation touches their
// collection. Grounded on pkg/cache's Redis client construction and
// pkg/orm's Query.Cache "try cache, fall through, populate on miss"
// shape, generalised from a single GORM query to any Provider call.
package cachedprovider

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/polystore/pkg/metrics"
	"github.com/shashiranjanraj/polystore/pkg/store"
)

// Provider wraps an inner store.Provider with a Redis read-through cache.
type Provider struct {
	*store.BaseLifecycle

	cfg    Config
	inner  store.Provider
	client *redis.Client

	mu          sync.Mutex
	generations map[string]*int64 // collection -> cache-key generation counter
}

// New returns a disconnected caching decorator wrapping inner.
func New(cfg Config, inner store.Provider) *Provider {
	return &Provider{
		BaseLifecycle: store.NewBaseLifecycle("cached"),
		cfg:           cfg.withDefaults(),
		inner:         inner,
		generations:   make(map[string]*int64),
	}
}

func (p *Provider) Connect(ctx context.Context) error {
	if !p.BeginConnect() {
		return nil
	}
	p.client = redis.NewClient(&redis.Options{
		Addr:     p.cfg.Addr,
		Password: p.cfg.Password,
		DB:       p.cfg.DB,
	})
	if err := p.client.Ping(ctx).Err(); err != nil {
		p.client = nil
		return store.NewError(store.KindConnection, "cached.Connect", err)
	}
	return p.inner.Connect(ctx)
}

func (p *Provider) Disconnect(ctx context.Context) error {
	if !p.BeginDisconnect() {
		return nil
	}
	if p.client != nil {
		_ = p.client.Close()
	}
	return p.inner.Disconnect(ctx)
}

func (p *Provider) generation(col string) int64 {
	p.mu.Lock()
	g, ok := p.generations[col]
	if !ok {
		var zero int64
		g = &zero
		p.generations[col] = g
	}
	p.mu.Unlock()
	return atomic.LoadInt64(g)
}

func (p *Provider) bumpGeneration(col string) {
	p.mu.Lock()
	g, ok := p.generations[col]
	if !ok {
		var zero int64
		g = &zero
		p.generations[col] = g
	}
	p.mu.Unlock()
	atomic.AddInt64(g, 1)
}

func (p *Provider) readKey(col, id string) string {
	return fmt.Sprintf("polystore:%s:%d:read:%s", col, p.generation(col), id)
}

func (p *Provider) queryKey(col string, opts store.QueryOptions) string {
	encoded, _ := json.Marshal(opts)
	sum := sha1.Sum(encoded)
	return fmt.Sprintf("polystore:%s:%d:query:%s", col, p.generation(col), hex.EncodeToString(sum[:]))
}

func (p *Provider) getCached(ctx context.Context, key string, dest any) bool {
	val, err := p.client.Get(ctx, key).Result()
	if err != nil {
		metrics.ObserveCacheMiss("redis")
		return false
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		metrics.ObserveCacheMiss("redis")
		return false
	}
	metrics.ObserveCacheHit("redis")
	return true
}

func (p *Provider) setCached(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = p.client.Set(ctx, key, data, p.cfg.TTL).Err()
}

func (p *Provider) Read(ctx context.Context, col, id string) (store.Document, error) {
	key := p.readKey(col, id)
	var cached store.Document
	if p.getCached(ctx, key, &cached) {
		return cached, nil
	}

	doc, err := p.inner.Read(ctx, col, id)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		p.setCached(ctx, key, doc)
	}
	return doc, nil
}

func (p *Provider) Query(ctx context.Context, col string, opts store.QueryOptions) ([]store.Document, error) {
	key := p.queryKey(col, opts)
	var cached []store.Document
	if p.getCached(ctx, key, &cached) {
		return cached, nil
	}

	docs, err := p.inner.Query(ctx, col, opts)
	if err != nil {
		return nil, err
	}
	p.setCached(ctx, key, docs)
	return docs, nil
}

func (p *Provider) Create(ctx context.Context, col string, doc store.Document) (store.Document, error) {
	created, err := p.inner.Create(ctx, col, doc)
	if err != nil {
		return nil, err
	}
	p.bumpGeneration(col)
	return created, nil
}

func (p *Provider) Update(ctx context.Context, col, id string, partial store.Document) (store.Document, error) {
	updated, err := p.inner.Update(ctx, col, id, partial)
	if err != nil {
		return nil, err
	}
	p.bumpGeneration(col)
	return updated, nil
}

func (p *Provider) Delete(ctx context.Context, col, id string) (bool, error) {
	removed, err := p.inner.Delete(ctx, col, id)
	if err != nil {
		return false, err
	}
	if removed {
		p.bumpGeneration(col)
	}
	return removed, nil
}

func (p *Provider) BeginTransaction(ctx context.Context) error { return p.inner.BeginTransaction(ctx) }
func (p *Provider) Rollback(ctx context.Context) error         { return p.inner.Rollback(ctx) }

func (p *Provider) Commit(ctx context.Context) error {
	return p.inner.Commit(ctx)
}

func (p *Provider) EnsureSchema(ctx context.Context, col string, def *store.SchemaDefinition) error {
	return p.inner.EnsureSchema(ctx, col, def)
}

func (p *Provider) EnsureIndex(ctx context.Context, col string, def store.IndexDefinition) error {
	if err := p.inner.EnsureIndex(ctx, col, def); err != nil {
		return err
	}
	p.bumpGeneration(col)
	return nil
}

var _ store.Provider = (*Provider)(nil)
