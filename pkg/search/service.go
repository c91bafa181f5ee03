package search

import (
	"context"
	"fmt"

	"github.com/matst80/slask-facets/pkg/catalog"
	"github.com/matst80/slask-facets/pkg/facet"
	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
)

// Service answers filter queries against a catalog. It holds no per request
// state so one instance serves any number of concurrent requests.
type Service struct {
	Catalog catalog.Source
	Facets  *facet.Computer
}

func NewService(src catalog.Source, scope facet.Scope) *Service {
	return &Service{
		Catalog: src,
		Facets:  &facet.Computer{Scope: scope},
	}
}

type itemsResult struct {
	items []types.Product
	total int
	page  int
	err   error
}

type facetsResult struct {
	facets types.FacetSet
	err    error
}

func (s *Service) Search(ctx context.Context, spec types.FilterSpec) (types.QueryResult, error) {
	spec = spec.Clone()
	spec.Sanitize()

	itemsChan := make(chan itemsResult, 1)
	facetsChan := make(chan facetsResult, 1)
	go func() {
		itemsChan <- s.findPage(ctx, spec)
	}()
	go func() {
		facets, err := s.Facets.Compute(ctx, s.Catalog, spec)
		facetsChan <- facetsResult{facets: facets, err: err}
	}()

	items := <-itemsChan
	facets := <-facetsChan
	if items.err != nil {
		return types.QueryResult{}, items.err
	}
	if facets.err != nil {
		return types.QueryResult{}, fmt.Errorf("compute facets: %w", facets.err)
	}
	spec.Page = items.page
	return Assemble(spec, items.items, items.total, facets.facets), nil
}

// findPage counts and fetches the page. Sources implementing catalog.Pager do
// both in one read, others get two calls and a write in between can skew the
// total against the items. Facets are always computed from their own read.
func (s *Service) findPage(ctx context.Context, spec types.FilterSpec) itemsResult {
	q := query.Build(spec)
	if pager, ok := s.Catalog.(catalog.Pager); ok {
		page := 1
		items, total, err := pager.FindPage(ctx, q, func(total int) query.Query {
			page = EffectivePage(total, spec.PageSize, spec.Page)
			return q.WithWindow(page, spec.PageSize)
		})
		if err != nil {
			return itemsResult{err: fmt.Errorf("find products: %w", err)}
		}
		return itemsResult{items: items, total: total, page: page}
	}
	total, err := s.Catalog.Count(ctx, q.Predicate)
	if err != nil {
		return itemsResult{err: fmt.Errorf("count products: %w", err)}
	}
	page := EffectivePage(total, spec.PageSize, spec.Page)
	if total == 0 {
		return itemsResult{items: []types.Product{}, page: page}
	}
	items, err := s.Catalog.Find(ctx, q.WithWindow(page, spec.PageSize))
	if err != nil {
		return itemsResult{err: fmt.Errorf("find products: %w", err)}
	}
	return itemsResult{items: items, total: total, page: page}
}

// GetFacets computes only the facet set for spec.
func (s *Service) GetFacets(ctx context.Context, spec types.FilterSpec) (types.FacetSet, error) {
	return s.Facets.Compute(ctx, s.Catalog, spec)
}
