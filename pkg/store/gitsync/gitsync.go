// Package gitsync decorates any store.Provider with Git-backed version
// history and multi-node replication (spec.md §4.7): every mutation is
// tracked as a dirty collection, optionally auto-committed, and a
// background timer periodically commits, pulls, and pushes against a
// configured remote.
package gitsync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/polystore/pkg/logger"
	"github.com/shashiranjanraj/polystore/pkg/store"
)

// Wrapper is the Git-sync decorator provider.
type Wrapper struct {
	*store.BaseLifecycle

	cfg    Config
	inner  store.Provider
	runner *runner

	mu    sync.Mutex
	dirty map[string]bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New returns a disconnected Git-sync decorator wrapping inner.
func New(cfg Config, inner store.Provider) *Wrapper {
	cfg = cfg.withDefaults()
	return &Wrapper{
		BaseLifecycle: store.NewBaseLifecycle("gitsync"),
		cfg:           cfg,
		inner:         inner,
		runner:        newRunner(cfg.RepositoryPath),
		dirty:         make(map[string]bool),
	}
}

func (w *Wrapper) Connect(ctx context.Context) error {
	if !w.BeginConnect() {
		return nil
	}

	if err := os.MkdirAll(w.cfg.RepositoryPath, 0o755); err != nil {
		return newSyncError("gitsync.Connect", err)
	}

	if !w.isRepo() {
		if err := w.initRepo(ctx); err != nil {
			return err
		}
	} else {
		if err := w.checkoutBranch(ctx); err != nil {
			return err
		}
		if err := w.configureAuthor(ctx); err != nil {
			return err
		}
	}

	if err := w.inner.Connect(ctx); err != nil {
		return err
	}

	if w.cfg.Remote != "" && w.cfg.AutoSync {
		if err := w.syncNow(ctx); err != nil {
			logger.Warn("gitsync: initial sync failed", "error", err)
		}
	}

	w.startPeriodicSync()
	return nil
}

func (w *Wrapper) Disconnect(ctx context.Context) error {
	if !w.BeginDisconnect() {
		return nil
	}
	w.stopPeriodicSync()

	if err := w.commitNow(ctx, "polystore: flush on disconnect"); err != nil {
		logger.Warn("gitsync: flush on disconnect failed", "error", err)
	}
	if w.cfg.Remote != "" && w.cfg.AutoSync {
		if err := w.syncNow(ctx); err != nil {
			logger.Warn("gitsync: sync on disconnect failed", "error", err)
		}
	}

	return w.inner.Disconnect(ctx)
}

func (w *Wrapper) isRepo() bool {
	_, err := os.Stat(filepath.Join(w.cfg.RepositoryPath, ".git"))
	return err == nil
}

func (w *Wrapper) initRepo(ctx context.Context) error {
	if _, err := w.runner.run(ctx, "init", "-b", w.cfg.Branch); err != nil {
		return newSyncError("gitsync.initRepo", err)
	}
	if err := w.configureAuthor(ctx); err != nil {
		return err
	}

	readme := filepath.Join(w.cfg.RepositoryPath, "README.md")
	if _, err := os.Stat(readme); os.IsNotExist(err) {
		if err := os.WriteFile(readme, []byte("# polystore data\n"), 0o644); err != nil {
			return newSyncError("gitsync.initRepo", err)
		}
	}
	if _, err := w.runner.run(ctx, "add", "-A"); err != nil {
		return newSyncError("gitsync.initRepo", err)
	}
	if _, err := w.runner.run(ctx, "commit", "-m", "polystore: initial commit"); err != nil {
		return newSyncError("gitsync.initRepo", err)
	}
	return nil
}

func (w *Wrapper) checkoutBranch(ctx context.Context) error {
	if _, err := w.runner.run(ctx, "rev-parse", "--verify", w.cfg.Branch); err != nil {
		_, err := w.runner.run(ctx, "checkout", "-b", w.cfg.Branch)
		if err != nil {
			return newSyncError("gitsync.checkoutBranch", err)
		}
		return nil
	}
	if _, err := w.runner.run(ctx, "checkout", w.cfg.Branch); err != nil {
		return newSyncError("gitsync.checkoutBranch", err)
	}
	return nil
}

func (w *Wrapper) configureAuthor(ctx context.Context) error {
	if _, err := w.runner.run(ctx, "config", "user.name", w.cfg.AuthorName); err != nil {
		return newSyncError("gitsync.configureAuthor", err)
	}
	if _, err := w.runner.run(ctx, "config", "user.email", w.cfg.AuthorEmail); err != nil {
		return newSyncError("gitsync.configureAuthor", err)
	}
	return nil
}

// markDirty records that col needs committing. "transaction" is used when
// the mutation came from a transaction commit rather than a single op.
func (w *Wrapper) markDirty(col string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty[col] = true
}

// beforeMutate runs the pre-mutation fetch/fast-forward-merge conflict
// check required when auto-sync is enabled (spec §4.7 step 1). Failure is
// surfaced so the caller can decide whether to proceed; conflicts raise
// MergeConflict for the "merge" strategy.
func (w *Wrapper) beforeMutate(ctx context.Context, op string) error {
	if w.cfg.Remote == "" || !w.cfg.AutoSync {
		return nil
	}
	if _, err := w.runner.run(ctx, "fetch", w.cfg.Remote); err != nil {
		return newSyncError(op, err)
	}
	remoteRef := w.cfg.Remote + "/" + w.cfg.Branch
	_, err := w.runner.run(ctx, "merge", "--ff-only", remoteRef)
	if err == nil {
		return nil
	}
	return w.handleConflict(ctx, op, err)
}

func (w *Wrapper) handleConflict(ctx context.Context, op string, cause error) error {
	switch w.cfg.ConflictStrategy {
	case AcceptLocal:
		_, err := w.runner.run(ctx, "reset", "--hard", "HEAD")
		if err != nil {
			return newSyncError(op, err)
		}
		return nil
	case AcceptRemote:
		remoteRef := w.cfg.Remote + "/" + w.cfg.Branch
		if _, err := w.runner.run(ctx, "reset", "--hard", remoteRef); err != nil {
			return newSyncError(op, err)
		}
		if err := w.inner.Disconnect(ctx); err != nil {
			return err
		}
		return w.inner.Connect(ctx)
	default:
		return newMergeConflictError(op, cause)
	}
}

// commitNow commits every dirty collection with message, clearing the
// dirty set on success. A no-op if nothing is dirty.
func (w *Wrapper) commitNow(ctx context.Context, message string) error {
	w.mu.Lock()
	if len(w.dirty) == 0 {
		w.mu.Unlock()
		return nil
	}
	cols := make([]string, 0, len(w.dirty))
	for c := range w.dirty {
		cols = append(cols, c)
	}
	w.mu.Unlock()

	if _, err := w.runner.run(ctx, "add", "-A"); err != nil {
		return newSyncError("gitsync.commitNow", err)
	}
	full := fmt.Sprintf("%s [%s]", message, strings.Join(cols, ", "))
	if _, err := w.runner.run(ctx, "commit", "-m", full); err != nil {
		if strings.Contains(err.Error(), "nothing to commit") {
			w.clearDirty(cols)
			return nil
		}
		return newSyncError("gitsync.commitNow", err)
	}
	w.clearDirty(cols)
	return nil
}

func (w *Wrapper) clearDirty(cols []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range cols {
		delete(w.dirty, c)
	}
}

// syncNow commits dirty state, pulls with no-rebase, resolves any conflict
// per the configured strategy, then pushes (spec §4.7 "periodic sync").
func (w *Wrapper) syncNow(ctx context.Context) error {
	if err := w.commitNow(ctx, "polystore: sync"); err != nil {
		return err
	}
	if w.cfg.Remote == "" {
		return nil
	}

	_, err := w.runner.run(ctx, "pull", "--no-rebase", w.cfg.Remote, w.cfg.Branch)
	if err != nil {
		if resolveErr := w.handleConflict(ctx, "gitsync.syncNow", err); resolveErr != nil {
			return resolveErr
		}
	}

	if _, err := w.runner.run(ctx, "push", w.cfg.Remote, w.cfg.Branch); err != nil {
		return newSyncError("gitsync.syncNow", err)
	}
	return nil
}

// resolveConflicts re-applies handleConflict with an explicit override of
// the configured strategy, for callers that chose "merge" and now want to
// resolve a raised MergeConflict programmatically.
func (w *Wrapper) resolveConflicts(ctx context.Context, strategy ConflictStrategy) error {
	original := w.cfg.ConflictStrategy
	w.cfg.ConflictStrategy = strategy
	defer func() { w.cfg.ConflictStrategy = original }()
	return w.handleConflict(ctx, "gitsync.resolveConflicts", fmt.Errorf("manual resolution requested"))
}

// revertTo requires a clean working tree, hard-resets to hash, and
// reconnects the inner provider so it reflects the reverted tree.
func (w *Wrapper) revertTo(ctx context.Context, hash string) error {
	status, err := w.runner.run(ctx, "status", "--porcelain")
	if err != nil {
		return newSyncError("gitsync.revertTo", err)
	}
	if status != "" {
		return newSyncError("gitsync.revertTo", fmt.Errorf("working tree is not clean"))
	}

	if _, err := w.runner.run(ctx, "reset", "--hard", hash); err != nil {
		return newSyncError("gitsync.revertTo", err)
	}
	if err := w.inner.Disconnect(ctx); err != nil {
		return err
	}
	return w.inner.Connect(ctx)
}

func (w *Wrapper) startPeriodicSync() {
	if w.cfg.Interval <= 0 || !w.cfg.AutoSync {
		return
	}
	w.stopCh = make(chan struct{})
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stopCh:
				return
			case <-ticker.C:
				if err := w.syncNow(context.Background()); err != nil {
					logger.Warn("gitsync: periodic sync failed", "error", err)
				}
			}
		}
	}()
}

func (w *Wrapper) stopPeriodicSync() {
	if w.stopCh == nil {
		return
	}
	close(w.stopCh)
	w.wg.Wait()
	w.stopCh = nil
}

var _ store.Provider = (*Wrapper)(nil)
