package search

import (
	"github.com/matst80/slask-facets/pkg/types"
)

// TotalPages is never below one, an empty result still has a first page.
func TotalPages(totalCount, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := (totalCount + pageSize - 1) / pageSize
	return max(pages, 1)
}

// EffectivePage clamps the requested page into [1, totalPages].
func EffectivePage(totalCount, pageSize, page int) int {
	return min(max(page, 1), TotalPages(totalCount, pageSize))
}

// Assemble builds the response for one query. The page reported is the page
// actually served, which is lower than requested when it was past the end.
func Assemble(spec types.FilterSpec, items []types.Product, totalCount int, facets types.FacetSet) types.QueryResult {
	if items == nil {
		items = []types.Product{}
	}
	return types.QueryResult{
		Items:      items,
		TotalCount: totalCount,
		Page:       EffectivePage(totalCount, spec.PageSize, spec.Page),
		TotalPages: TotalPages(totalCount, spec.PageSize),
		Facets:     facets,
	}
}
