package query

import (
	"slices"
	"strings"

	"github.com/matst80/slask-facets/pkg/types"
)

type Query struct {
	Predicate *Predicate
	Sort      types.SortField
	Order     types.SortOrder
	Skip      int
	Limit     int
}

// Build translates a spec into a predicate, sort and window. The spec is
// sanitized on a copy first so out of range paging is clamped, never rejected.
func Build(spec types.FilterSpec) Query {
	spec = spec.Clone()
	spec.Sanitize()
	return Query{
		Predicate: BuildPredicate(spec),
		Sort:      spec.Sort,
		Order:     spec.Order,
		Skip:      spec.Skip(),
		Limit:     spec.PageSize,
	}
}

func BuildPredicate(spec types.FilterSpec) *Predicate {
	p := &Predicate{}

	if spec.Category != "" {
		needle := strings.ToLower(spec.Category)
		p.Add(Category, func(item *types.Product) bool {
			return types.ContainsFold(item.Category, needle)
		})
	}
	if spec.Brand != "" {
		needle := strings.ToLower(spec.Brand)
		p.Add(Brand, func(item *types.Product) bool {
			return types.ContainsFold(item.Brand, needle)
		})
	}
	if spec.Search != "" {
		needle := strings.ToLower(spec.Search)
		p.Add(Search, func(item *types.Product) bool {
			return item.ContainsText(needle)
		})
	}
	if minPrice, maxPrice := spec.PriceRange(); minPrice != nil || maxPrice != nil {
		p.Add(Price, func(item *types.Product) bool {
			if minPrice != nil && item.SellingPrice < *minPrice {
				return false
			}
			if maxPrice != nil && item.SellingPrice > *maxPrice {
				return false
			}
			return true
		})
	}
	if len(spec.Ram) > 0 {
		values := slices.Clone(spec.Ram)
		p.Add(Ram, func(item *types.Product) bool {
			return slices.Contains(values, item.Specification.Ram)
		})
	}
	if len(spec.Storage) > 0 {
		values := slices.Clone(spec.Storage)
		p.Add(Storage, func(item *types.Product) bool {
			return slices.Contains(values, item.Specification.Storage)
		})
	}
	if len(spec.Os) > 0 {
		values := slices.Clone(spec.Os)
		p.Add(Os, func(item *types.Product) bool {
			return slices.Contains(values, item.Specification.Os)
		})
	}
	if spec.InStockOnly {
		p.Add(Stock, func(item *types.Product) bool {
			return item.InStock()
		})
	}
	return p
}

// WithWindow returns a copy of the query serving the given 1-based page.
func (q Query) WithWindow(page, pageSize int) Query {
	q.Skip = (page - 1) * pageSize
	q.Limit = pageSize
	return q
}
