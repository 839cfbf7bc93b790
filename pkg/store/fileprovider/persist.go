package fileprovider

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

const aggregateFileName = "database.json"

func collectionFilePath(dir, collection string) string {
	return filepath.Join(dir, collection+".json")
}

func aggregateFilePath(dir string) string {
	return filepath.Join(dir, aggregateFileName)
}

// loadAll scans dir and populates the mirror. A missing file is an empty
// mirror (spec §4.5); this is not an error.
func (p *Provider) loadAll() error {
	if err := os.MkdirAll(p.cfg.DirectoryPath, 0o755); err != nil {
		return fmt.Errorf("fileprovider: mkdir %s: %w", p.cfg.DirectoryPath, err)
	}

	if p.cfg.UseSingleFile {
		return p.loadAggregate()
	}
	return p.loadSplit()
}

func (p *Provider) loadAggregate() error {
	path := aggregateFilePath(p.cfg.DirectoryPath)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fileprovider: read %s: %w", path, err)
	}

	var raw map[string]map[string]store.Document
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fileprovider: parse %s: %w", path, err)
	}
	for col, docs := range raw {
		p.mirror[col] = docs
	}
	return nil
}

func (p *Provider) loadSplit() error {
	entries, err := os.ReadDir(p.cfg.DirectoryPath)
	if err != nil {
		return fmt.Errorf("fileprovider: readdir %s: %w", p.cfg.DirectoryPath, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".json" {
			continue
		}
		col := name[:len(name)-len(ext)]
		if err := p.loadCollectionFile(col); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) loadCollectionFile(col string) error {
	path := collectionFilePath(p.cfg.DirectoryPath, col)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fileprovider: read %s: %w", path, err)
	}

	var docs map[string]store.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("fileprovider: parse %s: %w", path, err)
	}
	p.mirror[col] = docs
	return nil
}

// flushCollection writes one collection's current mirror state to disk
// under lock, via temp-file-then-rename so readers never observe a
// partially written file (spec §4.5, §9).
func (p *Provider) flushCollection(col string) error {
	if p.cfg.UseSingleFile {
		return p.flushAggregate()
	}

	p.mu.Lock()
	docs := p.mirror[col]
	p.mu.Unlock()

	target := collectionFilePath(p.cfg.DirectoryPath, col)
	return p.atomicWrite(target, docs)
}

func (p *Provider) flushAggregate() error {
	p.mu.Lock()
	snapshot := make(map[string]map[string]store.Document, len(p.mirror))
	for col, docs := range p.mirror {
		snapshot[col] = docs
	}
	p.mu.Unlock()

	target := aggregateFilePath(p.cfg.DirectoryPath)
	return p.atomicWrite(target, snapshot)
}

func (p *Provider) atomicWrite(target string, v any) error {
	lock := newFileLock(target, p.cfg.LockRetries, p.cfg.LockTimeoutMs)
	release, err := lock.acquire()
	if err != nil {
		return err
	}
	defer release()

	var data []byte
	if p.cfg.PrettyPrint {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("fileprovider: marshal %s: %w", target, err)
	}

	tmp := target + ".tmp"
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("fileprovider: mkdir %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("fileprovider: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("fileprovider: rename %s -> %s: %w", tmp, target, err)
	}
	return nil
}
