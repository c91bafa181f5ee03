package types

import (
	"slices"
	"strings"
)

type SortField string

const (
	SortCreatedAt    SortField = "createdAt"
	SortSellingPrice SortField = "sellingPrice"
	SortName         SortField = "name"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultSort     = SortCreatedAt
	DefaultOrder    = OrderDesc
)

func (s SortField) Valid() bool {
	return s == SortCreatedAt || s == SortSellingPrice || s == SortName
}

func (o SortOrder) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// FilterSpec is the normalized selection of filters, sort and page for one query.
// It is treated as a value, call Clone before mutating a shared copy.
type FilterSpec struct {
	Category    string    `json:"category,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Search      string    `json:"search,omitempty"`
	PriceMin    *int      `json:"minPrice,omitempty"`
	PriceMax    *int      `json:"maxPrice,omitempty"`
	Ram         []string  `json:"ram,omitempty"`
	Storage     []string  `json:"storage,omitempty"`
	Os          []string  `json:"os,omitempty"`
	InStockOnly bool      `json:"inStock,omitempty"`
	Sort        SortField `json:"sort"`
	Order       SortOrder `json:"order"`
	Page        int       `json:"page"`
	PageSize    int       `json:"limit"`
}

func NewFilterSpec() FilterSpec {
	return FilterSpec{
		Sort:     DefaultSort,
		Order:    DefaultOrder,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

func clamp[T int | float64](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Sanitize clamps and normalizes the spec in place. Nothing is rejected, malformed
// values are replaced with the closest valid value.
func (s *FilterSpec) Sanitize() {
	s.Category = strings.TrimSpace(s.Category)
	s.Brand = strings.TrimSpace(s.Brand)
	s.Search = strings.TrimSpace(s.Search)
	if s.PriceMin != nil && *s.PriceMin < 0 {
		s.PriceMin = nil
	}
	if s.PriceMax != nil && *s.PriceMax < 0 {
		s.PriceMax = nil
	}
	s.Ram = normalizeSet(s.Ram)
	s.Storage = normalizeSet(s.Storage)
	s.Os = normalizeSet(s.Os)
	if !s.Sort.Valid() {
		s.Sort = DefaultSort
	}
	if !s.Order.Valid() {
		s.Order = DefaultOrder
	}
	if s.PageSize == 0 {
		s.PageSize = DefaultPageSize
	}
	s.PageSize = clamp(s.PageSize, 1, MaxPageSize)
	if s.Page < 1 {
		s.Page = 1
	}
}

func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	ret := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			ret = append(ret, v)
		}
	}
	if len(ret) == 0 {
		return nil
	}
	slices.Sort(ret)
	return slices.Compact(ret)
}

// PriceRange returns the effective inclusive price bounds. An inverted range
// is treated as no price constraint at all.
func (s *FilterSpec) PriceRange() (min *int, max *int) {
	if s.PriceMin != nil && s.PriceMax != nil && *s.PriceMin > *s.PriceMax {
		return nil, nil
	}
	return s.PriceMin, s.PriceMax
}

func (s *FilterSpec) Skip() int {
	return (s.Page - 1) * s.PageSize
}

func (s FilterSpec) Clone() FilterSpec {
	ret := s
	ret.PriceMin = cloneInt(s.PriceMin)
	ret.PriceMax = cloneInt(s.PriceMax)
	ret.Ram = slices.Clone(s.Ram)
	ret.Storage = slices.Clone(s.Storage)
	ret.Os = slices.Clone(s.Os)
	return ret
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Equal is field wise, nil and empty sets are the same selection.
func (s FilterSpec) Equal(other FilterSpec) bool {
	return s.Category == other.Category &&
		s.Brand == other.Brand &&
		s.Search == other.Search &&
		equalInt(s.PriceMin, other.PriceMin) &&
		equalInt(s.PriceMax, other.PriceMax) &&
		slices.Equal(s.Ram, other.Ram) &&
		slices.Equal(s.Storage, other.Storage) &&
		slices.Equal(s.Os, other.Os) &&
		s.InStockOnly == other.InStockOnly &&
		s.Sort == other.Sort &&
		s.Order == other.Order &&
		s.Page == other.Page &&
		s.PageSize == other.PageSize
}

// EqualIgnoringPage compares everything but the requested page.
func (s FilterSpec) EqualIgnoringPage(other FilterSpec) bool {
	other.Page = s.Page
	return s.Equal(other)
}

func IntPtr(v int) *int {
	return &v
}
