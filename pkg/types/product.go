package types

import (
	"strings"
	"time"
)

type Specification struct {
	Ram       string `json:"ram,omitempty"`
	Storage   string `json:"storage,omitempty"`
	Processor string `json:"processor,omitempty"`
	Battery   string `json:"battery,omitempty"`
	Display   string `json:"display,omitempty"`
	Camera    string `json:"camera,omitempty"`
	Os        string `json:"os,omitempty"`
}

// Product is owned by the catalog, search only reads it.
type Product struct {
	Id            string        `json:"id"`
	Name          string        `json:"name"`
	Brand         string        `json:"brand"`
	Category      string        `json:"category"`
	Description   string        `json:"description,omitempty"`
	SellingPrice  int           `json:"sellingPrice"`
	CostPrice     int           `json:"costPrice"`
	Stock         int           `json:"stock"`
	Specification Specification `json:"specification"`
	ImageUrls     []string      `json:"imageUrls"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (p *Product) GetId() string {
	return p.Id
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

// ContainsText reports whether the lower cased needle is a substring of name,
// brand, category or description.
func (p *Product) ContainsText(needle string) bool {
	return ContainsFold(p.Name, needle) ||
		ContainsFold(p.Brand, needle) ||
		ContainsFold(p.Category, needle) ||
		ContainsFold(p.Description, needle)
}

// ContainsFold is a case insensitive substring match, needle must be lower case.
func ContainsFold(value, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(value), lowerNeedle)
}
