package gitsync_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/fileprovider"
	"github.com/shashiranjanraj/polystore/pkg/store/gitsync"
	"github.com/shashiranjanraj/polystore/pkg/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Conformance(t, func() store.Provider {
		repoDir := t.TempDir()
		inner := fileprovider.New(fileprovider.Config{DirectoryPath: repoDir, WriteDebounceMs: 5})
		return gitsync.New(gitsync.Config{RepositoryPath: repoDir, AutoCommit: true}, inner)
	})
}

func newWrapper(t *testing.T) *gitsync.Wrapper {
	t.Helper()
	repoDir := t.TempDir()
	inner := fileprovider.New(fileprovider.Config{DirectoryPath: repoDir, WriteDebounceMs: 5})
	w := gitsync.New(gitsync.Config{
		RepositoryPath: repoDir,
		AutoCommit:     true,
	}, inner)
	require.NoError(t, w.Connect(context.Background()))
	t.Cleanup(func() { _ = w.Disconnect(context.Background()) })
	return w
}

func TestConnectInitializesRepository(t *testing.T) {
	w := newWrapper(t)
	assert.True(t, w.IsConnected())
}

func TestCreateAutoCommits(t *testing.T) {
	ctx := context.Background()
	w := newWrapper(t)

	created, err := w.Create(ctx, "notes", store.Document{"text": "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID())

	time.Sleep(50 * time.Millisecond) // let the debounced write land on disk

	history, err := w.GetHistory(ctx, "notes", created.ID())
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}

func TestReadAfterCreate(t *testing.T) {
	ctx := context.Background()
	w := newWrapper(t)

	created, err := w.Create(ctx, "notes", store.Document{"text": "hello"})
	require.NoError(t, err)

	read, err := w.Read(ctx, "notes", created.ID())
	require.NoError(t, err)
	assert.Equal(t, "hello", read["text"])
}

func TestCommitNowIsNoOpWithoutChanges(t *testing.T) {
	w := newWrapper(t)
	require.NoError(t, w.CommitNow(context.Background()))
}

func TestHistoryAccumulatesAcrossUpdates(t *testing.T) {
	ctx := context.Background()
	w := newWrapper(t)

	created, err := w.Create(ctx, "notes", store.Document{"text": "v1"})
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)

	_, err = w.Update(ctx, "notes", created.ID(), store.Document{"text": "v2"})
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)

	_, err = w.Update(ctx, "notes", created.ID(), store.Document{"text": "v3"})
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)

	history, err := w.GetHistory(ctx, "notes", created.ID())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(history), 3)
}
