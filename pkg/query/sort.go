package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matst80/slask-facets/pkg/types"
)

// Compare orders two products by the query sort key, ties are broken by id so
// every page boundary is stable.
func (q Query) Compare(a, b *types.Product) int {
	var c int
	switch q.Sort {
	case types.SortSellingPrice:
		c = cmp.Compare(a.SellingPrice, b.SellingPrice)
	case types.SortName:
		c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if q.Order == types.OrderDesc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.Id, b.Id)
}

func (q Query) SortItems(items []*types.Product) {
	slices.SortFunc(items, q.Compare)
}

// Window returns the items between skip and skip+limit of an already sorted slice.
func (q Query) Window(items []*types.Product) []*types.Product {
	if q.Skip >= len(items) {
		return []*types.Product{}
	}
	end := min(q.Skip+q.Limit, len(items))
	return items[q.Skip:end]
}
