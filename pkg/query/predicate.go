package query

import (
	"slices"

	"github.com/matst80/slask-facets/pkg/types"
)

type Dimension string

const (
	Category Dimension = "category"
	Brand    Dimension = "brand"
	Search   Dimension = "search"
	Price    Dimension = "price"
	Ram      Dimension = "ram"
	Storage  Dimension = "storage"
	Os       Dimension = "os"
	Stock    Dimension = "stock"
)

type Clause struct {
	Dimension Dimension
	Match     func(item *types.Product) bool
}

// Predicate is a conjunction of clauses, at most one per dimension.
// The zero value matches everything.
type Predicate struct {
	clauses []Clause
}

func (p *Predicate) Add(dimension Dimension, match func(item *types.Product) bool) {
	p.clauses = append(p.clauses, Clause{Dimension: dimension, Match: match})
}

func (p *Predicate) Matches(item *types.Product) bool {
	if p == nil {
		return true
	}
	for _, c := range p.clauses {
		if !c.Match(item) {
			return false
		}
	}
	return true
}

// WithOut returns a predicate with the given dimension's constraint removed,
// used to find what else could be picked in that dimension.
func (p *Predicate) WithOut(dimension Dimension) *Predicate {
	if p == nil {
		return &Predicate{}
	}
	result := &Predicate{clauses: make([]Clause, 0, len(p.clauses))}
	for _, c := range p.clauses {
		if c.Dimension != dimension {
			result.clauses = append(result.clauses, c)
		}
	}
	return result
}

func (p *Predicate) Has(dimension Dimension) bool {
	if p == nil {
		return false
	}
	return slices.ContainsFunc(p.clauses, func(c Clause) bool {
		return c.Dimension == dimension
	})
}

func (p *Predicate) Dimensions() []Dimension {
	if p == nil {
		return nil
	}
	ret := make([]Dimension, len(p.clauses))
	for i, c := range p.clauses {
		ret[i] = c.Dimension
	}
	return ret
}

func (p *Predicate) Len() int {
	if p == nil {
		return 0
	}
	return len(p.clauses)
}
