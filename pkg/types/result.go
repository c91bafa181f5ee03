package types

type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FacetSet holds the currently selectable values for each facet dimension.
type FacetSet struct {
	Categories []string   `json:"categories"`
	Brands     []string   `json:"brands"`
	Rams       []string   `json:"rams"`
	Storages   []string   `json:"storages"`
	Oses       []string   `json:"oses"`
	PriceRange PriceRange `json:"priceRange"`
}

func EmptyFacetSet() FacetSet {
	return FacetSet{
		Categories: []string{},
		Brands:     []string{},
		Rams:       []string{},
		Storages:   []string{},
		Oses:       []string{},
	}
}

type QueryResult struct {
	Items      []Product `json:"items"`
	TotalCount int       `json:"totalCount"`
	Page       int       `json:"currentPage"`
	TotalPages int       `json:"totalPages"`
	Facets     FacetSet  `json:"filters"`
}
