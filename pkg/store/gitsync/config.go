package gitsync

import "time"

// ConflictStrategy names how periodic sync resolves a non-fast-forward pull.
type ConflictStrategy string

const (
	// AcceptLocal hard-resets to local HEAD, discarding remote divergence.
	AcceptLocal ConflictStrategy = "accept-local"
	// AcceptRemote hard-resets to the remote ref and reconnects the inner provider.
	AcceptRemote ConflictStrategy = "accept-remote"
	// Merge raises MergeConflict for explicit caller resolution.
	Merge ConflictStrategy = "merge"
)

// Config configures the Git-sync decorator.
type Config struct {
	RepositoryPath string

	Remote     string
	Branch     string
	Interval   time.Duration
	AutoCommit bool
	AutoSync   bool

	AuthorName  string
	AuthorEmail string

	ConflictStrategy ConflictStrategy
}

func (c Config) withDefaults() Config {
	if c.Branch == "" {
		c.Branch = "main"
	}
	if c.AuthorName == "" {
		c.AuthorName = "polystore"
	}
	if c.AuthorEmail == "" {
		c.AuthorEmail = "polystore@localhost"
	}
	if c.ConflictStrategy == "" {
		c.ConflictStrategy = Merge
	}
	return c
}
