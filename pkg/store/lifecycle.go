package store

import (
	"log/slog"
	"sync"
)

// connState is the provider lifecycle state machine: Disconnected →
// Connected → Disconnected.
type connState int

const (
	stateDisconnected connState = iota
	stateConnected
)

// BaseLifecycle implements the connect/disconnect state machine shared by
// every provider. Embed it and call its guards from Connect/Disconnect;
// double-connect and double-disconnect become logged no-ops rather than
// errors, matching spec.md §4.3.
type BaseLifecycle struct {
	mu    sync.RWMutex
	state connState
	name  string // provider kind, used only in warning log lines
}

// NewBaseLifecycle returns a lifecycle starting in the Disconnected state.
// name identifies the provider kind in warning log lines (e.g. "memory",
// "file", "relational").
func NewBaseLifecycle(name string) *BaseLifecycle {
	return &BaseLifecycle{name: name}
}

// IsConnected reports the current state. Never fails.
func (b *BaseLifecycle) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state == stateConnected
}

// BeginConnect reports whether the caller should actually perform the
// connect work. false means connect was already connected: logs a warning
// and returns false so the caller skips re-initialization.
func (b *BaseLifecycle) BeginConnect() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateConnected {
		slog.Warn("store: connect called while already connected", "provider", b.name)
		return false
	}
	b.state = stateConnected
	return true
}

// BeginDisconnect is BeginConnect's mirror for teardown.
func (b *BaseLifecycle) BeginDisconnect() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateDisconnected {
		slog.Warn("store: disconnect called while already disconnected", "provider", b.name)
		return false
	}
	b.state = stateDisconnected
	return true
}
