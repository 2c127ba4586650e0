// Package generator runs the bake pipeline for one template: extract the
// component meshes, merge sections by material, save them, and publish the
// result through the cache.
package generator

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/cache"
	"github.com/Faultbox/meshbake/internal/config"
	"github.com/Faultbox/meshbake/internal/extract"
	"github.com/Faultbox/meshbake/internal/logger"
	"github.com/Faultbox/meshbake/internal/materials"
	"github.com/Faultbox/meshbake/internal/provider"
	"github.com/Faultbox/meshbake/pkg/meshdata"
)

// ErrNothingToBuild is returned when no cached data exists and the request has no components.
var ErrNothingToBuild = errors.New("no cached mesh data and no components to build")

// Override stores a template instance under its own key instead of the shared template name.
type Override struct {
	Level    string
	Instance string
}

// Request describes one generation pass.
type Request struct {
	Template   string
	Override   *Override
	Components []extract.Component
	Force      bool // Skip the cache and rebuild
}

// Key returns the cache key for req: the template name, or
// "<level>_<instance>" when an override is set.
func Key(req Request) string {
	if req.Override != nil {
		return req.Override.Level + "_" + req.Override.Instance
	}
	return req.Template
}

// Result reports what a Generate call did.
type Result struct {
	PassID    string
	Key       string
	Source    cache.Source // Miss means the data was rebuilt
	Stats     meshdata.MergeStats
	WriteErr  error // Saving the section file failed; data is still served from memory
	TableErr  error // Saving the material table failed
	TableSave bool  // The material table gained rows and was saved
}

// Generator owns the store, cache and material table used by generation passes.
type Generator struct {
	store     *meshdata.Store
	cache     *cache.Cache
	table     *materials.Table
	tablePath string
	extractor *extract.Extractor
}

// New creates a generator. tablePath is where a mutated table is saved; empty disables saving.
func New(store *meshdata.Store, c *cache.Cache, table *materials.Table, tablePath string) *Generator {
	return &Generator{
		store:     store,
		cache:     c,
		table:     table,
		tablePath: tablePath,
		extractor: &extract.Extractor{Table: table},
	}
}

// Open builds a generator from configuration, loading the material table.
// An empty table path gives an in-memory table that is never saved.
func Open(cfg *config.Config) (*Generator, error) {
	format, err := meshdata.ParseFormat(cfg.Cache.Format)
	if err != nil {
		return nil, err
	}
	table := materials.NewTable()
	if cfg.Materials.TablePath != "" {
		if table, err = materials.Load(cfg.Materials.TablePath); err != nil {
			return nil, err
		}
	}
	store := meshdata.NewStore(cfg.Cache.Root, format)
	return New(store, cache.New(store, table), table, cfg.Materials.TablePath), nil
}

// Store returns the section file store.
func (g *Generator) Store() *meshdata.Store { return g.store }

// Cache returns the in-memory cache.
func (g *Generator) Cache() *cache.Cache { return g.cache }

// Table returns the material table.
func (g *Generator) Table() *materials.Table { return g.table }

// Generate returns a provider filled with the data for req. Unless req.Force
// is set, cached data in memory or on disk is used when present. Otherwise the
// components are extracted, merged, written to disk and cached. A failed file
// write is logged and reported in Result.WriteErr without failing the pass.
func (g *Generator) Generate(req Request) (*provider.Provider, Result, error) {
	key := meshdata.NormalizeName(Key(req))
	res := Result{PassID: uuid.NewString(), Key: key}
	log := logger.Named("generator").With(zap.String("pass", res.PassID), zap.String("template", key))

	if _, err := g.store.Path(key); err != nil {
		return nil, res, err
	}

	if !req.Force {
		entry, src, err := g.cache.Get(key)
		if err != nil {
			log.Warn("cached data unusable, rebuilding", zap.Error(err))
		}
		if entry != nil {
			p := provider.New()
			entry.Apply(p)
			res.Source = src
			log.Info("mesh data found", zap.Stringer("source", src))
			return p, res, nil
		}
	}

	if len(req.Components) == 0 {
		return nil, res, fmt.Errorf("%w: %s", ErrNothingToBuild, key)
	}

	raw, mutated := g.extractor.ExtractAll(req.Components)
	merged, stats := meshdata.Merge(raw)
	res.Stats = stats
	if stats.Empty() {
		log.Warn("merge on empty list")
	} else {
		log.Debug("sections merged",
			zap.Int("input", stats.Input),
			zap.Int("output", stats.Output),
			zap.Int("merged", stats.Merged))
	}

	if err := g.store.Write(key, merged); err != nil {
		log.Error("writing mesh data", zap.Error(err))
		res.WriteErr = err
	}

	sections, mats := provider.FromRaw(merged, g.table)
	if err := g.cache.Put(key, sections, mats); err != nil {
		return nil, res, err
	}

	if mutated && g.tablePath != "" {
		if err := g.table.Save(g.tablePath); err != nil {
			log.Error("saving material table", zap.Error(err))
			res.TableErr = err
		} else {
			res.TableSave = true
		}
	}

	p := provider.New()
	p.SetTemplateName(key)
	p.SetSections(sections)
	p.SetMaterials(mats)

	log.Info("mesh data generated", zap.Int("sections", len(sections)), zap.Int("materials", len(mats)))
	return p, res, nil
}

// Invalidate removes the saved file and the cache entry for name.
// A missing file is not an error.
func (g *Generator) Invalidate(name string) error {
	key := meshdata.NormalizeName(name)
	g.cache.Delete(key)
	if err := g.store.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	logger.Named("generator").Info("invalidated", zap.String("template", key))
	return nil
}

// ClearAll removes every saved file and empties the cache.
func (g *Generator) ClearAll() error {
	g.cache.Reset()
	if err := g.store.ClearAll(); err != nil {
		return err
	}
	logger.Named("generator").Info("cache directory cleared", zap.String("root", g.store.Root))
	return nil
}
