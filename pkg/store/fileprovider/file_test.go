package fileprovider_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/fileprovider"
	"github.com/shashiranjanraj/polystore/pkg/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Conformance(t, func() store.Provider {
		return fileprovider.New(fileprovider.Config{DirectoryPath: t.TempDir(), WriteDebounceMs: 5})
	})
}

func newConnected(t *testing.T, cfg fileprovider.Config) *fileprovider.Provider {
	t.Helper()
	p := fileprovider.New(cfg)
	require.NoError(t, p.Connect(context.Background()))
	t.Cleanup(func() { _ = p.Disconnect(context.Background()) })
	return p
}

func TestCreateAndReadSplitLayout(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t, fileprovider.Config{DirectoryPath: t.TempDir(), WriteDebounceMs: 20})

	created, err := p.Create(ctx, "items", store.Document{"name": "a"})
	require.NoError(t, err)

	read, err := p.Read(ctx, "items", created.ID())
	require.NoError(t, err)
	assert.Equal(t, created, read)
}

func TestDurabilityAcrossReconnect(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	p1 := fileprovider.New(fileprovider.Config{DirectoryPath: dir, WriteDebounceMs: 20})
	require.NoError(t, p1.Connect(ctx))
	created, err := p1.Create(ctx, "items", store.Document{"name": "durable"})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond) // past the debounce window
	require.NoError(t, p1.Disconnect(ctx))

	p2 := fileprovider.New(fileprovider.Config{DirectoryPath: dir, WriteDebounceMs: 20})
	require.NoError(t, p2.Connect(ctx))
	defer p2.Disconnect(ctx)

	read, err := p2.Read(ctx, "items", created.ID())
	require.NoError(t, err)
	assert.Equal(t, created, read)
}

func TestDisconnectFlushesWithoutWaitingForDebounce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	p1 := fileprovider.New(fileprovider.Config{DirectoryPath: dir, WriteDebounceMs: 5_000})
	require.NoError(t, p1.Connect(ctx))
	created, err := p1.Create(ctx, "items", store.Document{"name": "flushed-on-close"})
	require.NoError(t, err)
	require.NoError(t, p1.Disconnect(ctx)) // must flush immediately, not wait 5s

	p2 := fileprovider.New(fileprovider.Config{DirectoryPath: dir, WriteDebounceMs: 20})
	require.NoError(t, p2.Connect(ctx))
	defer p2.Disconnect(ctx)

	read, err := p2.Read(ctx, "items", created.ID())
	require.NoError(t, err)
	assert.Equal(t, created, read)
}

func TestAggregateLayout(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := fileprovider.Config{DirectoryPath: dir, UseSingleFile: true, WriteDebounceMs: 20}

	p1 := fileprovider.New(cfg)
	require.NoError(t, p1.Connect(ctx))
	a, err := p1.Create(ctx, "items", store.Document{"v": 1.0})
	require.NoError(t, err)
	b, err := p1.Create(ctx, "others", store.Document{"v": 2.0})
	require.NoError(t, err)
	require.NoError(t, p1.Disconnect(ctx))

	p2 := fileprovider.New(cfg)
	require.NoError(t, p2.Connect(ctx))
	defer p2.Disconnect(ctx)

	ra, err := p2.Read(ctx, "items", a.ID())
	require.NoError(t, err)
	assert.Equal(t, a, ra)
	rb, err := p2.Read(ctx, "others", b.ID())
	require.NoError(t, err)
	assert.Equal(t, b, rb)
}

func TestDuplicateCreateFails(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t, fileprovider.Config{DirectoryPath: t.TempDir(), WriteDebounceMs: 20})

	created, err := p.Create(ctx, "items", store.Document{"v": 1})
	require.NoError(t, err)

	_, err = p.Create(ctx, "items", store.Document{"id": created.ID(), "v": 2})
	require.Error(t, err)
	assert.True(t, store.IsDuplicateKey(err))
}

func TestMissingReturnsNull(t *testing.T) {
	ctx := context.Background()
	p := newConnected(t, fileprovider.Config{DirectoryPath: t.TempDir(), WriteDebounceMs: 20})

	read, err := p.Read(ctx, "items", "no-such")
	require.NoError(t, err)
	assert.Nil(t, read)
}

var _ store.Provider = fileprovider.New(fileprovider.Config{})
