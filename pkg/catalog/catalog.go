package catalog

import (
	"context"
	"errors"

	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
)

// ErrUnavailable is returned when the backing catalog can not be read. Callers
// propagate it, nothing in search retries.
var ErrUnavailable = errors.New("catalog unavailable")

// Source is the read side of the product catalog.
type Source interface {
	Count(ctx context.Context, p *query.Predicate) (int, error)
	Find(ctx context.Context, q query.Query) ([]types.Product, error)
	// Scan calls fn for every product matching p. fn must not retain the pointer.
	Scan(ctx context.Context, p *query.Predicate, fn func(item *types.Product)) error
}

// Pager is implemented by sources that can count and fetch a page in one
// read. window gets the total match count and returns the query to page with,
// so the total and the items always describe the same catalog state.
type Pager interface {
	FindPage(ctx context.Context, q query.Query, window func(total int) query.Query) ([]types.Product, int, error)
}
