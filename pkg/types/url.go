package types

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/schema"
)

// filterParams mirrors the query string, everything is decoded as text and
// normalized afterwards so a bad value never fails the whole request.
type filterParams struct {
	Category string   `schema:"category"`
	Brand    string   `schema:"brand"`
	Search   string   `schema:"search"`
	MinPrice string   `schema:"minPrice"`
	MaxPrice string   `schema:"maxPrice"`
	Sort     string   `schema:"sort"`
	Order    string   `schema:"order"`
	Page     string   `schema:"page"`
	Limit    string   `schema:"limit"`
	Ram      []string `schema:"ram"`
	Storage  []string `schema:"storage"`
	Os       []string `schema:"os"`
	InStock  string   `schema:"inStock"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func parsePrice(value string) *int {
	if value == "" {
		return nil
	}
	if i, err := strconv.Atoi(value); err == nil {
		return &i
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	r := math.Round(f)
	// outside the int range the conversion is undefined, treat it as unparsable
	if math.Abs(r) >= float64(math.MaxInt) {
		return nil
	}
	i := int(r)
	return &i
}

func parseIntOr(value string, fallback int) int {
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

// ParseValues turns query values into a sanitized FilterSpec. The error is only
// informational, the returned spec is always usable.
func ParseValues(query url.Values) (FilterSpec, error) {
	params := filterParams{}
	err := decoder.Decode(&params, query)

	spec := NewFilterSpec()
	spec.Category = params.Category
	spec.Brand = params.Brand
	spec.Search = params.Search
	spec.PriceMin = parsePrice(params.MinPrice)
	spec.PriceMax = parsePrice(params.MaxPrice)
	spec.Ram = params.Ram
	spec.Storage = params.Storage
	spec.Os = params.Os
	if inStock, parseErr := strconv.ParseBool(params.InStock); parseErr == nil {
		spec.InStockOnly = inStock
	}
	if params.Sort != "" {
		spec.Sort = SortField(params.Sort)
	}
	if params.Order != "" {
		spec.Order = SortOrder(params.Order)
	}
	spec.Page = parseIntOr(params.Page, 1)
	spec.PageSize = parseIntOr(params.Limit, DefaultPageSize)
	spec.Sanitize()
	return spec, err
}

func ParseQuery(rawQuery string) (FilterSpec, error) {
	values, err := url.ParseQuery(rawQuery)
	spec, decodeErr := ParseValues(values)
	if err == nil {
		err = decodeErr
	}
	return spec, err
}

func GetFilterSpecFromRequest(r *http.Request) (FilterSpec, error) {
	return ParseValues(r.URL.Query())
}

// Values is the inverse of ParseValues, defaults are left out to keep urls short.
func (s FilterSpec) Values() url.Values {
	ret := url.Values{}
	set := func(key, value string) {
		if value != "" {
			ret.Set(key, value)
		}
	}
	set("category", s.Category)
	set("brand", s.Brand)
	set("search", s.Search)
	if s.PriceMin != nil {
		ret.Set("minPrice", strconv.Itoa(*s.PriceMin))
	}
	if s.PriceMax != nil {
		ret.Set("maxPrice", strconv.Itoa(*s.PriceMax))
	}
	for _, v := range s.Ram {
		ret.Add("ram", v)
	}
	for _, v := range s.Storage {
		ret.Add("storage", v)
	}
	for _, v := range s.Os {
		ret.Add("os", v)
	}
	if s.InStockOnly {
		ret.Set("inStock", "true")
	}
	if s.Sort != DefaultSort {
		set("sort", string(s.Sort))
	}
	if s.Order != DefaultOrder {
		set("order", string(s.Order))
	}
	if s.Page > 1 {
		ret.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize != DefaultPageSize {
		ret.Set("limit", strconv.Itoa(s.PageSize))
	}
	return ret
}

// Encode returns the canonical query string, keys are sorted.
func (s FilterSpec) Encode() string {
	return s.Values().Encode()
}
