// Package cache keeps generated section data in memory, keyed by template name,
// and falls back to the on-disk store on a memory miss.
//
// Entries are deep copies: neither what Put receives nor what Get returns
// aliases cache-owned data. Entries live until Delete or Reset.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/logger"
	"github.com/Faultbox/meshbake/internal/materials"
	"github.com/Faultbox/meshbake/internal/provider"
	"github.com/Faultbox/meshbake/pkg/meshdata"
)

// Source tells where a Get result came from.
type Source int

const (
	SourceMiss Source = iota
	SourceMemory
	SourceDisk
)

func (s Source) String() string {
	switch s {
	case SourceMemory:
		return "memory"
	case SourceDisk:
		return "disk"
	default:
		return "miss"
	}
}

// Entry is the cached data of one template.
type Entry struct {
	Name      string
	Sections  []provider.SectionData
	Materials []materials.Material
}

// Apply loads the entry into p, replacing its sections and materials.
func (e *Entry) Apply(p *provider.Provider) {
	p.SetTemplateName(e.Name)
	p.SetSections(e.Sections)
	p.SetMaterials(e.Materials)
}

// Cache maps template names to entries.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	store   *meshdata.Store
	table   *materials.Table
}

// New creates an empty cache. store may be nil to disable the disk fallback;
// table resolves material names for entries read from disk.
func New(store *meshdata.Store, table *materials.Table) *Cache {
	return &Cache{
		entries: make(map[string]*Entry),
		store:   store,
		table:   table,
	}
}

// Get returns a copy of the entry for name. A memory hit requires the stored
// entry to carry the same name. On a memory miss the store is read, the data
// converted and cached. A missing file is a plain miss with a nil error; any
// other read failure is returned with SourceMiss so the caller can regenerate.
func (c *Cache) Get(name string) (*Entry, Source, error) {
	key := meshdata.NormalizeName(name)
	log := logger.Named("cache")

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && e.Name == key {
		out, err := copyEntry(e)
		if err != nil {
			return nil, SourceMiss, err
		}
		log.Debug("found in memory", zap.String("template", key))
		return out, SourceMemory, nil
	}

	if c.store == nil {
		return nil, SourceMiss, nil
	}

	raw, err := c.store.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("not found", zap.String("template", key))
		return nil, SourceMiss, nil
	}
	if err != nil {
		log.Error("reading saved mesh data", zap.String("template", key), zap.Error(err))
		return nil, SourceMiss, err
	}

	sections, mats := provider.FromRaw(raw, c.table)
	loaded := &Entry{Name: key, Sections: sections, Materials: mats}

	c.mu.Lock()
	c.entries[key] = loaded
	c.mu.Unlock()

	log.Debug("found in file", zap.String("template", key), zap.Int("sections", len(sections)))
	out, err := copyEntry(loaded)
	if err != nil {
		return nil, SourceMiss, err
	}
	return out, SourceDisk, nil
}

// Put stores a copy of the data under name, replacing any existing entry.
func (c *Cache) Put(name string, sections []provider.SectionData, mats []materials.Material) error {
	key := meshdata.NormalizeName(name)
	e, err := copyEntry(&Entry{Name: key, Sections: sections, Materials: mats})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete drops the entry for name and reports whether one existed.
func (c *Cache) Delete(name string) bool {
	key := meshdata.NormalizeName(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()
}

// Len returns the number of entries in memory.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Names returns the cached template names, sorted.
func (c *Cache) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

func copyEntry(e *Entry) (*Entry, error) {
	out := &Entry{}
	if err := copier.CopyWithOption(out, e, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copying cache entry %s: %w", e.Name, err)
	}
	return out, nil
}
