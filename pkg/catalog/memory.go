package catalog

import (
	"context"
	"sync"

	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	totalItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slaskfacets_catalog_items",
		Help: "Number of products in the catalog snapshot",
	})
	noUpserts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskfacets_catalog_upserts_total",
		Help: "The total number of product upserts applied",
	})
	noDeletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskfacets_catalog_deletes_total",
		Help: "The total number of product deletes applied",
	})
)

type ChangeHandler interface {
	CatalogChanged()
}

// MemoryStore keeps the catalog in memory. Reads take a shared lock so any
// number of searches can run at once.
type MemoryStore struct {
	mu            sync.RWMutex
	items         map[string]*types.Product
	dirty         bool
	version       uint64
	ChangeHandler ChangeHandler
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*types.Product),
	}
}

func (s *MemoryStore) Upsert(items ...types.Product) {
	s.mu.Lock()
	for i := range items {
		item := items[i]
		if item.Id == "" {
			continue
		}
		s.items[item.Id] = &item
	}
	s.dirty = true
	s.version++
	l := len(s.items)
	s.mu.Unlock()

	noUpserts.Add(float64(len(items)))
	totalItems.Set(float64(l))
	s.changed()
}

func (s *MemoryStore) Delete(ids ...string) {
	s.mu.Lock()
	for _, id := range ids {
		delete(s.items, id)
	}
	s.dirty = true
	s.version++
	l := len(s.items)
	s.mu.Unlock()

	noDeletes.Add(float64(len(ids)))
	totalItems.Set(float64(l))
	s.changed()
}

func (s *MemoryStore) changed() {
	if s.ChangeHandler != nil {
		s.ChangeHandler.CatalogChanged()
	}
}

func (s *MemoryStore) Get(id string) (types.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return types.Product{}, false
	}
	return *item, true
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// IsDirty reports whether the store changed since it was last loaded or saved.
func (s *MemoryStore) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// markClean clears the dirty flag unless the store changed after the
// snapshot at version was taken.
func (s *MemoryStore) markClean(version uint64) {
	s.mu.Lock()
	if s.version == version {
		s.dirty = false
	}
	s.mu.Unlock()
}

func (s *MemoryStore) Count(ctx context.Context, p *query.Predicate) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, item := range s.items {
		if p.Matches(item) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Find(ctx context.Context, q query.Query) ([]types.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedWindow(q, s.matchingLocked(q.Predicate)), nil
}

// FindPage counts and windows under a single read lock.
func (s *MemoryStore) FindPage(ctx context.Context, q query.Query, window func(total int) query.Query) ([]types.Product, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	matching := s.matchingLocked(q.Predicate)
	total := len(matching)
	return sortedWindow(window(total), matching), total, nil
}

func (s *MemoryStore) matchingLocked(p *query.Predicate) []*types.Product {
	matching := make([]*types.Product, 0, len(s.items))
	for _, item := range s.items {
		if p.Matches(item) {
			matching = append(matching, item)
		}
	}
	return matching
}

func sortedWindow(q query.Query, matching []*types.Product) []types.Product {
	q.SortItems(matching)
	window := q.Window(matching)
	result := make([]types.Product, len(window))
	for i, item := range window {
		result[i] = *item
	}
	return result
}

func (s *MemoryStore) Scan(ctx context.Context, p *query.Predicate, fn func(item *types.Product)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if p.Matches(item) {
			fn(item)
		}
	}
	return nil
}

var _ Source = (*MemoryStore)(nil)
var _ Pager = (*MemoryStore)(nil)
