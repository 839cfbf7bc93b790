package gitsync

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

// Commit is one entry returned by getHistory.
type Commit struct {
	Hash    string
	Author  string
	Email   string
	Date    time.Time
	Message string
}

const logFormat = "%H%x1f%an%x1f%ae%x1f%aI%x1f%s%x1e"

// getHistory returns the commits that touched the document identified by id
// within collection col, newest first. Because the inner provider's file
// layout (one file per collection, a single aggregate file, ...) is opaque
// to this decorator, commits are found by pickaxe search (`git log -G`) for
// the identifier string rather than by path, which works across layouts at
// the cost of occasionally matching an unrelated collection that happens to
// reuse the same id string.
func (w *Wrapper) getHistory(ctx context.Context, col, id string) ([]Commit, error) {
	out, err := w.runner.run(ctx, "log", "--format="+logFormat, "-G"+id, "--", ".")
	if err != nil {
		return nil, newSyncError("gitsync.getHistory", err)
	}
	return parseLog(out), nil
}

func parseLog(out string) []Commit {
	if out == "" {
		return nil
	}
	var commits []Commit
	for _, rec := range strings.Split(out, "\x1e") {
		rec = strings.Trim(rec, "\n")
		if rec == "" {
			continue
		}
		fields := strings.Split(rec, "\x1f")
		if len(fields) < 5 {
			continue
		}
		date, _ := time.Parse(time.RFC3339, fields[3])
		commits = append(commits, Commit{
			Hash:    fields[0],
			Author:  fields[1],
			Email:   fields[2],
			Date:    date,
			Message: fields[4],
		})
	}
	return commits
}

// getVersion checks out hash, reloads the inner provider from that working
// tree, reads the document, then restores the prior branch and reloads the
// inner provider again so normal operation resumes from current state —
// guaranteed on every exit path via defer.
func (w *Wrapper) getVersion(ctx context.Context, col, id, hash string) (store.Document, error) {
	current, err := w.currentRef(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := w.runner.run(ctx, "checkout", hash); err != nil {
		return nil, newSyncError("gitsync.getVersion", err)
	}
	defer func() {
		_, _ = w.runner.run(ctx, "checkout", current)
		_ = w.inner.Disconnect(ctx)
		_ = w.inner.Connect(ctx)
	}()

	if err := w.inner.Disconnect(ctx); err != nil {
		return nil, err
	}
	if err := w.inner.Connect(ctx); err != nil {
		return nil, err
	}
	return w.inner.Read(ctx, col, id)
}

func (w *Wrapper) currentRef(ctx context.Context) (string, error) {
	out, err := w.runner.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", newSyncError("gitsync.currentRef", err)
	}
	return out, nil
}
