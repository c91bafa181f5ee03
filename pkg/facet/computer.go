package facet

import (
	"context"
	"slices"
	"sync"

	"github.com/matst80/slask-facets/pkg/catalog"
	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
)

type Scope int

const (
	// ScopePerDimension computes each dimension against all filters except its own.
	ScopePerDimension Scope = iota
	// ScopeGlobal lists every value in the catalog regardless of filters.
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	return "per-dimension"
}

type valueFacet struct {
	dimension query.Dimension
	value     func(item *types.Product) string
	selected  func(spec *types.FilterSpec) []string
	assign    func(set *types.FacetSet, values []string)
}

var valueFacets = []valueFacet{
	{
		dimension: query.Category,
		value:     func(item *types.Product) string { return item.Category },
		assign:    func(set *types.FacetSet, values []string) { set.Categories = values },
	},
	{
		dimension: query.Brand,
		value:     func(item *types.Product) string { return item.Brand },
		assign:    func(set *types.FacetSet, values []string) { set.Brands = values },
	},
	{
		dimension: query.Ram,
		value:     func(item *types.Product) string { return item.Specification.Ram },
		selected:  func(spec *types.FilterSpec) []string { return spec.Ram },
		assign:    func(set *types.FacetSet, values []string) { set.Rams = values },
	},
	{
		dimension: query.Storage,
		value:     func(item *types.Product) string { return item.Specification.Storage },
		selected:  func(spec *types.FilterSpec) []string { return spec.Storage },
		assign:    func(set *types.FacetSet, values []string) { set.Storages = values },
	},
	{
		dimension: query.Os,
		value:     func(item *types.Product) string { return item.Specification.Os },
		selected:  func(spec *types.FilterSpec) []string { return spec.Os },
		assign:    func(set *types.FacetSet, values []string) { set.Oses = values },
	},
}

type Computer struct {
	Scope Scope
}

type facetResult struct {
	facet  *valueFacet
	values []string
	err    error
}

type priceResult struct {
	bounds types.PriceRange
	err    error
}

// Compute returns the selectable values for every facet dimension given the
// filters applied in spec.
func (c *Computer) Compute(ctx context.Context, src catalog.Source, spec types.FilterSpec) (types.FacetSet, error) {
	spec = spec.Clone()
	spec.Sanitize()
	predicate := query.BuildPredicate(spec)
	if c.Scope == ScopeGlobal {
		predicate = &query.Predicate{}
	}

	ch := make(chan facetResult)
	wg := &sync.WaitGroup{}
	for i := range valueFacets {
		f := &valueFacets[i]
		wg.Add(1)
		go func(otherFilters *query.Predicate) {
			defer wg.Done()
			values, err := distinctValues(ctx, src, otherFilters, f.value)
			if err == nil && f.selected != nil {
				values = withSelected(values, f.selected(&spec))
			}
			ch <- facetResult{facet: f, values: values, err: err}
		}(predicate.WithOut(f.dimension))
	}

	priceChan := make(chan priceResult, 1)
	go func() {
		bounds, err := priceBounds(ctx, src, predicate.WithOut(query.Price))
		priceChan <- priceResult{bounds: bounds, err: err}
	}()

	go func() {
		wg.Wait()
		close(ch)
	}()

	ret := types.EmptyFacetSet()
	var firstErr error
	for r := range ch {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		r.facet.assign(&ret, r.values)
	}
	price := <-priceChan
	if firstErr == nil {
		firstErr = price.err
	}
	if firstErr != nil {
		return types.EmptyFacetSet(), firstErr
	}
	ret.PriceRange = price.bounds
	return ret, nil
}

func distinctValues(ctx context.Context, src catalog.Source, p *query.Predicate, value func(*types.Product) string) ([]string, error) {
	seen := make(map[string]struct{})
	err := src.Scan(ctx, p, func(item *types.Product) {
		if v := value(item); v != "" {
			seen[v] = struct{}{}
		}
	})
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(seen))
	for v := range seen {
		ret = append(ret, v)
	}
	slices.Sort(ret)
	return ret, nil
}

// withSelected makes sure a selected value is never dropped from its own list.
func withSelected(values []string, selected []string) []string {
	l := len(values)
	for _, s := range selected {
		if _, found := slices.BinarySearch(values[:l], s); !found {
			values = append(values, s)
		}
	}
	if len(values) > l {
		slices.Sort(values)
	}
	return values
}

func scanBounds(ctx context.Context, src catalog.Source, p *query.Predicate) (types.PriceRange, bool, error) {
	bounds := types.PriceRange{}
	hasValues := false
	err := src.Scan(ctx, p, func(item *types.Product) {
		if !hasValues {
			bounds.Min = item.SellingPrice
			bounds.Max = item.SellingPrice
			hasValues = true
			return
		}
		bounds.Min = min(bounds.Min, item.SellingPrice)
		bounds.Max = max(bounds.Max, item.SellingPrice)
	})
	return bounds, hasValues, err
}

// priceBounds falls back to the bounds of the whole catalog when nothing
// matches, and to zero for an empty catalog.
func priceBounds(ctx context.Context, src catalog.Source, p *query.Predicate) (types.PriceRange, error) {
	bounds, ok, err := scanBounds(ctx, src, p)
	if err != nil || ok || p.Len() == 0 {
		return bounds, err
	}
	bounds, _, err = scanBounds(ctx, src, &query.Predicate{})
	return bounds, err
}
