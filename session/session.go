// Package session owns the hierarchies of an application session: which
// series are loaded, their built Maps, and a small cache of materialized
// render results.
//
// Session state is an explicit object threaded through the application, not
// ambient package state: series are inserted on load, removed on unload, and
// nothing survives the Session itself. All methods are safe for concurrent
// use.
package session

import (
	"fmt"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arloliu/plotmip/errs"
	"github.com/arloliu/plotmip/internal/options"
	"github.com/arloliu/plotmip/mip"
	"github.com/arloliu/plotmip/render"
	"github.com/arloliu/plotmip/series"
)

// DefaultRenderCacheSize is the render cache capacity in materialized
// viewports. Redraws repeat viewports (window re-exposure, tab switches,
// pan round trips), so even a small cache absorbs most frames.
const DefaultRenderCacheSize = 128

// SessionOption configures a Session.
type SessionOption = options.Option[*sessionConfig]

type sessionConfig struct {
	cacheSize int
}

// WithRenderCacheSize sets the render cache capacity. Must be positive;
// the default is DefaultRenderCacheSize.
func WithRenderCacheSize(n int) SessionOption {
	return options.New(func(cfg *sessionConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: got %d", errs.ErrInvalidCacheSize, n)
		}
		cfg.cacheSize = n

		return nil
	})
}

type renderKey struct {
	id series.ID
	vp render.Viewport
	fp uint64
}

type entry struct {
	name string
	m    *mip.Map
}

// Session is the registry of loaded hierarchies, keyed by series.ID.
type Session struct {
	mu    sync.RWMutex
	maps  map[series.ID]entry
	cache *lru.Cache[renderKey, []render.Point]
}

// New creates an empty Session.
func New(opts ...SessionOption) (*Session, error) {
	cfg := sessionConfig{cacheSize: DefaultRenderCacheSize}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	cache, err := lru.New[renderKey, []render.Point](cfg.cacheSize)
	if err != nil {
		return nil, err
	}

	return &Session{
		maps:  make(map[series.ID]entry),
		cache: cache,
	}, nil
}

// Load builds a hierarchy for the series and registers it under the
// series' own name, returning the handle renders will use.
//
// Building runs outside the registry lock, so loading a large log does not
// stall queries against already loaded series. Loading the same name twice
// fails with errs.ErrSeriesAlreadyLoaded; a different name hashing onto an
// occupied handle fails with errs.ErrHandleCollision instead of silently
// replacing the resident hierarchy.
func (ss *Session) Load(s *series.Series, opts ...mip.BuilderOption) (series.ID, error) {
	m, err := mip.Build(s, opts...)
	if err != nil {
		return 0, err
	}

	return ss.register(s.Name(), m)
}

// LoadBuilt registers an already built hierarchy, typically one decoded
// from a snapshot. The same duplicate and collision rules as Load apply.
func (ss *Session) LoadBuilt(m *mip.Map) (series.ID, error) {
	return ss.register(m.Name(), m)
}

func (ss *Session) register(name string, m *mip.Map) (series.ID, error) {
	id := series.NameID(name)

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if existing, ok := ss.maps[id]; ok {
		if existing.name == name {
			return 0, fmt.Errorf("%w: %q", errs.ErrSeriesAlreadyLoaded, name)
		}

		return 0, fmt.Errorf("%w: %q and %q both hash to %016x", errs.ErrHandleCollision, existing.name, name, uint64(id))
	}
	ss.maps[id] = entry{name: name, m: m}

	return id, nil
}

// Get returns the hierarchy registered under id.
func (ss *Session) Get(id series.ID) (*mip.Map, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	e, ok := ss.maps[id]

	return e.m, ok
}

// Name returns the series name registered under id.
func (ss *Session) Name(id series.ID) (string, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	e, ok := ss.maps[id]

	return e.name, ok
}

// Len returns the number of loaded series.
func (ss *Session) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return len(ss.maps)
}

// IDs returns the loaded handles in ascending order.
func (ss *Session) IDs() []series.ID {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	ids := make([]series.ID, 0, len(ss.maps))
	for id := range ss.maps {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Unload removes the hierarchy registered under id and drops its cached
// render results. Reports whether anything was loaded under id.
func (ss *Session) Unload(id series.ID) bool {
	ss.mu.Lock()
	_, ok := ss.maps[id]
	delete(ss.maps, id)
	ss.mu.Unlock()
	if !ok {
		return false
	}

	for _, key := range ss.cache.Keys() {
		if key.id == id {
			ss.cache.Remove(key)
		}
	}

	return true
}

// RenderCached returns the materialized render points for a viewport,
// serving repeats from the cache. Results are keyed by (series, viewport,
// DataSource configuration), so differently configured sources never
// collide. The returned slice is shared across callers and must be
// treated as read-only.
//
// An id with nothing loaded fails with errs.ErrSeriesNotFound.
func (ss *Session) RenderCached(id series.ID, vp render.Viewport, ds *render.DataSource) ([]render.Point, error) {
	ss.mu.RLock()
	e, ok := ss.maps[id]
	ss.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %016x", errs.ErrSeriesNotFound, uint64(id))
	}

	key := renderKey{id: id, vp: vp, fp: ds.Fingerprint()}
	if pts, ok := ss.cache.Get(key); ok {
		return pts, nil
	}

	pts := slices.Collect(ds.RenderPoints(e.m, vp))
	ss.cache.Add(key, pts)

	return pts, nil
}

// CacheLen returns the number of materialized viewports currently cached.
func (ss *Session) CacheLen() int {
	return ss.cache.Len()
}
