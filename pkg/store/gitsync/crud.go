package gitsync

import (
	"context"

	"github.com/shashiranjanraj/polystore/pkg/logger"
	"github.com/shashiranjanraj/polystore/pkg/store"
)

func (w *Wrapper) Create(ctx context.Context, col string, doc store.Document) (store.Document, error) {
	if err := w.beforeMutate(ctx, "gitsync.Create"); err != nil {
		return nil, err
	}
	created, err := w.inner.Create(ctx, col, doc)
	if err != nil {
		return nil, err
	}
	w.afterMutate(ctx, col)
	return created, nil
}

func (w *Wrapper) Read(ctx context.Context, col, id string) (store.Document, error) {
	return w.inner.Read(ctx, col, id)
}

func (w *Wrapper) Update(ctx context.Context, col, id string, partial store.Document) (store.Document, error) {
	if err := w.beforeMutate(ctx, "gitsync.Update"); err != nil {
		return nil, err
	}
	updated, err := w.inner.Update(ctx, col, id, partial)
	if err != nil {
		return nil, err
	}
	w.afterMutate(ctx, col)
	return updated, nil
}

func (w *Wrapper) Delete(ctx context.Context, col, id string) (bool, error) {
	if err := w.beforeMutate(ctx, "gitsync.Delete"); err != nil {
		return false, err
	}
	removed, err := w.inner.Delete(ctx, col, id)
	if err != nil {
		return false, err
	}
	if removed {
		w.afterMutate(ctx, col)
	}
	return removed, nil
}

func (w *Wrapper) Query(ctx context.Context, col string, opts store.QueryOptions) ([]store.Document, error) {
	return w.inner.Query(ctx, col, opts)
}

func (w *Wrapper) BeginTransaction(ctx context.Context) error {
	return w.inner.BeginTransaction(ctx)
}

func (w *Wrapper) Commit(ctx context.Context) error {
	if err := w.beforeMutate(ctx, "gitsync.Commit"); err != nil {
		return err
	}
	if err := w.inner.Commit(ctx); err != nil {
		return err
	}
	w.afterMutate(ctx, "transaction")
	return nil
}

func (w *Wrapper) Rollback(ctx context.Context) error {
	return w.inner.Rollback(ctx)
}

func (w *Wrapper) EnsureSchema(ctx context.Context, col string, def *store.SchemaDefinition) error {
	if err := w.beforeMutate(ctx, "gitsync.EnsureSchema"); err != nil {
		return err
	}
	if err := w.inner.EnsureSchema(ctx, col, def); err != nil {
		return err
	}
	w.afterMutate(ctx, col)
	return nil
}

func (w *Wrapper) EnsureIndex(ctx context.Context, col string, def store.IndexDefinition) error {
	if err := w.beforeMutate(ctx, "gitsync.EnsureIndex"); err != nil {
		return err
	}
	if err := w.inner.EnsureIndex(ctx, col, def); err != nil {
		return err
	}
	w.afterMutate(ctx, col)
	return nil
}

// afterMutate marks col dirty and, if auto-commit is enabled, commits
// immediately (spec §4.7 steps 3-4).
func (w *Wrapper) afterMutate(ctx context.Context, col string) {
	w.markDirty(col)
	if !w.cfg.AutoCommit {
		return
	}
	if err := w.commitNow(ctx, "polystore: auto-commit"); err != nil {
		logger.Warn("gitsync: auto-commit failed", "collection", col, "error", err)
	}
}
