// Package factory selects a store.Provider implementation from a Config
// value: a registry of named provider constructors keyed by Config.Type,
// open to extension via Register the same way a plugin-style driver
// registry lets callers add their own entries at init time.
package factory

import (
	"sync"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/browserprovider"
	"github.com/shashiranjanraj/polystore/pkg/store/cachedprovider"
	"github.com/shashiranjanraj/polystore/pkg/store/documentprovider"
	"github.com/shashiranjanraj/polystore/pkg/store/fileprovider"
	"github.com/shashiranjanraj/polystore/pkg/store/gitsync"
	"github.com/shashiranjanraj/polystore/pkg/store/memoryprovider"
	"github.com/shashiranjanraj/polystore/pkg/store/objectprovider"
	"github.com/shashiranjanraj/polystore/pkg/store/relational"
)

// Constructor builds a Provider from cfg.
type Constructor func(cfg Config) (store.Provider, error)

var (
	mu           sync.RWMutex
	constructors = map[string]Constructor{
		"memory":       newMemory,
		"json-file":    newFile,
		"relational":   newRelational,
		"document":     newDocument,
		"object-store": newObject,
		"browser-db":   newBrowser,
		"git-sync":     newGitSync,
	}
)

// Register adds or replaces the constructor for a provider type name, so
// additional back-ends can be plugged in without editing this package.
func Register(name string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	constructors[name] = ctor
}

// New builds the Provider named by cfg.Type. If cfg.CacheAddr is set, the
// result is wrapped in a read-through Redis cache decorator.
func New(cfg Config) (store.Provider, error) {
	mu.RLock()
	ctor, ok := constructors[cfg.Type]
	mu.RUnlock()
	if !ok {
		return nil, store.Errorf(store.KindConfiguration, "factory.New", "unknown provider type %q", cfg.Type)
	}

	p, err := ctor(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.CacheAddr != "" {
		p = cachedprovider.New(cachedprovider.Config{
			Addr:     cfg.CacheAddr,
			Password: cfg.CachePassword,
			DB:       cfg.CacheDB,
			TTL:      cfg.CacheTTL,
		}, p)
	}
	return p, nil
}

func newMemory(cfg Config) (store.Provider, error) {
	return memoryprovider.New(), nil
}

func newFile(cfg Config) (store.Provider, error) {
	return fileprovider.New(fileprovider.Config{
		DirectoryPath:   cfg.FileDirectoryPath,
		UseSingleFile:   cfg.FileUseSingleFile,
		PrettyPrint:     cfg.FilePrettyPrint,
		WriteDebounceMs: int(cfg.FileWriteDebounce.Milliseconds()),
		LockRetries:     cfg.FileLockRetries,
		LockTimeoutMs:   int(cfg.FileLockTimeout.Milliseconds()),
	}), nil
}

func newRelational(cfg Config) (store.Provider, error) {
	return relational.New(relational.Config{
		Driver:      cfg.RelationalDriver,
		DSN:         cfg.RelationalDSN,
		ForeignKeys: cfg.RelationalForeignKeys,
	}), nil
}

func newDocument(cfg Config) (store.Provider, error) {
	return documentprovider.New(documentprovider.Config{
		ConnectionString: cfg.DocumentConnectionString,
		DatabaseName:     cfg.DocumentDatabaseName,
	}), nil
}

func newObject(cfg Config) (store.Provider, error) {
	return objectprovider.New(objectprovider.Config{
		Endpoint:        cfg.ObjectEndpoint,
		AccessKeyID:     cfg.ObjectAccessKey,
		SecretAccessKey: cfg.ObjectSecretKey,
		BucketName:      cfg.ObjectBucketName,
		Region:          cfg.ObjectRegion,
		KeyPrefix:       cfg.ObjectKeyPrefix,
	}), nil
}

func newBrowser(cfg Config) (store.Provider, error) {
	return browserprovider.New(browserprovider.Config{
		DatabaseName:          cfg.BrowserDatabaseName,
		Version:               cfg.BrowserVersion,
		MigrationStrategy:     browserprovider.MigrationStrategy(cfg.BrowserMigrationStrategy),
		AutoCreateCollections: cfg.BrowserAutoCreateCollections,
	}), nil
}

func newGitSync(cfg Config) (store.Provider, error) {
	if cfg.Inner == nil {
		return nil, store.Errorf(store.KindConfiguration, "factory.newGitSync", "git-sync requires an inner provider config")
	}
	inner, err := New(*cfg.Inner)
	if err != nil {
		return nil, err
	}
	return gitsync.New(gitsync.Config{
		RepositoryPath:   cfg.GitRepositoryPath,
		Remote:           cfg.GitRemote,
		Branch:           cfg.GitBranch,
		Interval:         cfg.GitInterval,
		AutoCommit:       cfg.GitAutoCommit,
		AutoSync:         cfg.GitAutoSync,
		AuthorName:       cfg.GitAuthorName,
		AuthorEmail:      cfg.GitAuthorEmail,
		ConflictStrategy: gitsync.ConflictStrategy(cfg.GitConflictStrategy),
	}, inner), nil
}
