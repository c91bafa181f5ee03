package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/matst80/slask-facets/pkg/types"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func makeProducts() []*types.Product {
	return []*types.Product{
		{Id: "1", Name: "iPhone 15", Brand: "Apple", Category: "Phones", SellingPrice: 25000, Stock: 3, Specification: types.Specification{Ram: "8GB", Storage: "256GB", Os: "iOS"}, CreatedAt: base},
		{Id: "2", Name: "Pineapple Case", Brand: "Generic", Category: "Accessories", SellingPrice: 300, Stock: 0, CreatedAt: base.Add(time.Hour)},
		{Id: "3", Name: "Galaxy S24", Brand: "Samsung", Category: "Phones", SellingPrice: 22000, Stock: 10, Specification: types.Specification{Ram: "12GB", Storage: "512GB", Os: "Android"}, CreatedAt: base.Add(2 * time.Hour)},
		{Id: "4", Name: "Pixel 9 Pro", Brand: "Google", Category: "Phones", SellingPrice: 28000, Stock: 1, Specification: types.Specification{Ram: "16GB", Storage: "256GB", Os: "Android"}, CreatedAt: base.Add(3 * time.Hour)},
		{Id: "5", Name: "MacBook Air", Brand: "Apple", Category: "Laptops", SellingPrice: 35000, Stock: 2, Description: "Thin and light", Specification: types.Specification{Ram: "8GB", Storage: "512GB", Os: "macOS"}, CreatedAt: base.Add(4 * time.Hour)},
	}
}

func matchingIds(q Query, items []*types.Product) []string {
	ret := []string{}
	for _, item := range items {
		if q.Predicate.Matches(item) {
			ret = append(ret, item.Id)
		}
	}
	return ret
}

func TestBuildSubstringMatch(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Search = "Apple"
	ids := matchingIds(Build(spec), makeProducts())
	if fmt.Sprint(ids) != "[1 2 5]" {
		t.Errorf("Expected brand and name substring matches [1 2 5], got %v", ids)
	}

	spec = types.NewFilterSpec()
	spec.Brand = "ap"
	spec.Category = "PHO"
	ids = matchingIds(Build(spec), makeProducts())
	if fmt.Sprint(ids) != "[1]" {
		t.Errorf("Expected [1], got %v", ids)
	}

	spec = types.NewFilterSpec()
	spec.Search = "light"
	ids = matchingIds(Build(spec), makeProducts())
	if fmt.Sprint(ids) != "[5]" {
		t.Errorf("Expected description match [5], got %v", ids)
	}
}

func TestBuildOrWithinDimension(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Ram = []string{"8GB", "12GB"}
	ids := matchingIds(Build(spec), makeProducts())
	if fmt.Sprint(ids) != "[1 3 5]" {
		t.Errorf("Expected [1 3 5], got %v", ids)
	}
	spec.Os = []string{"Android"}
	ids = matchingIds(Build(spec), makeProducts())
	if fmt.Sprint(ids) != "[3]" {
		t.Errorf("Expected [3] with and across dimensions, got %v", ids)
	}
}

func TestBuildPriceBounds(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.PriceMin = types.IntPtr(22000)
	spec.PriceMax = types.IntPtr(28000)
	ids := matchingIds(Build(spec), makeProducts())
	if fmt.Sprint(ids) != "[1 3 4]" {
		t.Errorf("Expected inclusive bounds [1 3 4], got %v", ids)
	}

	spec.PriceMin = types.IntPtr(30000)
	spec.PriceMax = types.IntPtr(5000)
	q := Build(spec)
	if q.Predicate.Has(Price) {
		t.Error("Expected inverted price range to add no constraint")
	}
	if len(matchingIds(q, makeProducts())) != 5 {
		t.Error("Expected inverted range to match everything")
	}
}

func TestBuildInStock(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.InStockOnly = true
	ids := matchingIds(Build(spec), makeProducts())
	if fmt.Sprint(ids) != "[1 3 4 5]" {
		t.Errorf("Expected [1 3 4 5], got %v", ids)
	}
}

func TestBuildClampsWindow(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Page = 0
	spec.PageSize = 1000
	q := Build(spec)
	if q.Skip != 0 || q.Limit != types.MaxPageSize {
		t.Errorf("Expected skip 0 limit %d, got %d %d", types.MaxPageSize, q.Skip, q.Limit)
	}
	spec.Page = 3
	spec.PageSize = 20
	q = Build(spec)
	if q.Skip != 40 || q.Limit != 20 {
		t.Errorf("Expected skip 40 limit 20, got %d %d", q.Skip, q.Limit)
	}
}

func TestNarrowingIsMonotonic(t *testing.T) {
	items := makeProducts()
	edits := []func(*types.FilterSpec){
		func(s *types.FilterSpec) { s.Category = "phones" },
		func(s *types.FilterSpec) { s.Os = []string{"Android"} },
		func(s *types.FilterSpec) { s.InStockOnly = true },
		func(s *types.FilterSpec) { s.PriceMax = types.IntPtr(27000) },
		func(s *types.FilterSpec) { s.Search = "galaxy" },
	}
	spec := types.NewFilterSpec()
	last := len(matchingIds(Build(spec), items))
	for i, edit := range edits {
		edit(&spec)
		count := len(matchingIds(Build(spec), items))
		if count > last {
			t.Errorf("edit %d grew the result from %d to %d", i, last, count)
		}
		last = count
	}
	if last != 1 {
		t.Errorf("Expected a single match at the end, got %d", last)
	}
}

func TestWithOut(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Brand = "apple"
	spec.Ram = []string{"8GB"}
	p := BuildPredicate(spec)
	if p.Len() != 2 {
		t.Fatalf("Expected two clauses, got %d", p.Len())
	}
	other := p.WithOut(Ram)
	if other.Has(Ram) || !other.Has(Brand) {
		t.Errorf("Expected only brand to remain, got %v", other.Dimensions())
	}
	if !p.Has(Ram) {
		t.Error("Expected original predicate to be untouched")
	}
	var empty *Predicate
	if !empty.Matches(&types.Product{}) {
		t.Error("Expected nil predicate to match everything")
	}
}
