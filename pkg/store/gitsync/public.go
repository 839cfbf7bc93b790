package gitsync

import (
	"context"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

// GetHistory returns the commits that touched the document id in col,
// newest first.
func (w *Wrapper) GetHistory(ctx context.Context, col, id string) ([]Commit, error) {
	if err := store.ValidateConnected("gitsync.GetHistory", w); err != nil {
		return nil, err
	}
	return w.getHistory(ctx, col, id)
}

// GetVersion reads the document as it existed at hash.
func (w *Wrapper) GetVersion(ctx context.Context, col, id, hash string) (store.Document, error) {
	if err := store.ValidateConnected("gitsync.GetVersion", w); err != nil {
		return nil, err
	}
	return w.getVersion(ctx, col, id, hash)
}

// RevertTo hard-resets the repository to hash and reconnects the inner
// provider. Requires a clean working tree.
func (w *Wrapper) RevertTo(ctx context.Context, hash string) error {
	if err := store.ValidateConnected("gitsync.RevertTo", w); err != nil {
		return err
	}
	return w.revertTo(ctx, hash)
}

// ResolveConflicts applies strategy to the current merge conflict,
// overriding the configured ConflictStrategy for this one resolution.
func (w *Wrapper) ResolveConflicts(ctx context.Context, strategy ConflictStrategy) error {
	if err := store.ValidateConnected("gitsync.ResolveConflicts", w); err != nil {
		return err
	}
	return w.resolveConflicts(ctx, strategy)
}

// CommitNow commits any dirty collections immediately, bypassing the
// auto-commit/periodic-sync cadence.
func (w *Wrapper) CommitNow(ctx context.Context) error {
	if err := store.ValidateConnected("gitsync.CommitNow", w); err != nil {
		return err
	}
	return w.commitNow(ctx, "polystore: manual commit")
}

// SyncNow runs one commit/pull/push cycle immediately.
func (w *Wrapper) SyncNow(ctx context.Context) error {
	if err := store.ValidateConnected("gitsync.SyncNow", w); err != nil {
		return err
	}
	return w.syncNow(ctx)
}
