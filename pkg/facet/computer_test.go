package facet

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/matst80/slask-facets/pkg/catalog"
	"github.com/matst80/slask-facets/pkg/query"
	"github.com/matst80/slask-facets/pkg/types"
)

func phone(id, brand, ram, os string, price int) types.Product {
	return types.Product{
		Id:            id,
		Name:          brand + " " + id,
		Brand:         brand,
		Category:      "Phones",
		SellingPrice:  price,
		Stock:         1,
		Specification: types.Specification{Ram: ram, Storage: "128GB", Os: os},
	}
}

func createStore() *catalog.MemoryStore {
	s := catalog.NewMemoryStore()
	s.Upsert(
		phone("1", "Apple", "8GB", "iOS", 25000),
		phone("2", "Samsung", "12GB", "Android", 22000),
		phone("3", "Google", "16GB", "Android", 28000),
		phone("4", "Samsung", "8GB", "Android", 9000),
		types.Product{Id: "5", Name: "Charger", Brand: "Anker", Category: "Accessories", SellingPrice: 400},
	)
	return s
}

func TestComputeWithoutFilters(t *testing.T) {
	c := &Computer{}
	set, err := c.Compute(context.Background(), createStore(), types.NewFilterSpec())
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(set.Brands) != "[Anker Apple Google Samsung]" {
		t.Errorf("Expected sorted brands, got %v", set.Brands)
	}
	if fmt.Sprint(set.Categories) != "[Accessories Phones]" {
		t.Errorf("Expected categories, got %v", set.Categories)
	}
	if fmt.Sprint(set.Rams) != "[12GB 16GB 8GB]" {
		t.Errorf("Expected ordinal sorted rams without empty values, got %v", set.Rams)
	}
	if set.PriceRange.Min != 400 || set.PriceRange.Max != 28000 {
		t.Errorf("Expected price range 400-28000, got %+v", set.PriceRange)
	}
}

func TestComputeExcludesOwnDimension(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Os = []string{"Android"}
	spec.Ram = []string{"8GB"}
	c := &Computer{}
	set, err := c.Compute(context.Background(), createStore(), spec)
	if err != nil {
		t.Fatal(err)
	}
	// ram is computed against os=Android only
	if fmt.Sprint(set.Rams) != "[12GB 16GB 8GB]" {
		t.Errorf("Expected all android ram values, got %v", set.Rams)
	}
	// os is computed against ram=8GB only
	if fmt.Sprint(set.Oses) != "[Android iOS]" {
		t.Errorf("Expected os values for 8GB phones, got %v", set.Oses)
	}
	// brand is computed with every filter applied
	if fmt.Sprint(set.Brands) != "[Samsung]" {
		t.Errorf("Expected only Samsung, got %v", set.Brands)
	}
}

func TestSelectedValueIsNeverOrphaned(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Ram = []string{"32GB"}
	spec.Brand = "apple"
	c := &Computer{}
	set, err := c.Compute(context.Background(), createStore(), spec)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(set.Rams, "32GB") {
		t.Errorf("Expected selected value to stay listed, got %v", set.Rams)
	}
	if !slices.Contains(set.Rams, "8GB") {
		t.Errorf("Expected other apple ram values, got %v", set.Rams)
	}
}

func TestPriceRangeIgnoresOwnFilter(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Category = "phones"
	spec.PriceMin = types.IntPtr(20000)
	c := &Computer{}
	set, err := c.Compute(context.Background(), createStore(), spec)
	if err != nil {
		t.Fatal(err)
	}
	if set.PriceRange.Min != 9000 || set.PriceRange.Max != 28000 {
		t.Errorf("Expected phone price range 9000-28000, got %+v", set.PriceRange)
	}
}

func TestPriceRangeFallsBackToCatalog(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Search = "nothing matches this"
	c := &Computer{}
	set, err := c.Compute(context.Background(), createStore(), spec)
	if err != nil {
		t.Fatal(err)
	}
	if set.PriceRange.Min != 400 || set.PriceRange.Max != 28000 {
		t.Errorf("Expected catalog bounds, got %+v", set.PriceRange)
	}
	if len(set.Brands) != 0 {
		t.Errorf("Expected no brands, got %v", set.Brands)
	}
}

func TestComputeEmptyCatalog(t *testing.T) {
	c := &Computer{}
	set, err := c.Compute(context.Background(), catalog.NewMemoryStore(), types.NewFilterSpec())
	if err != nil {
		t.Fatal(err)
	}
	if set.Categories == nil || len(set.Categories) != 0 || len(set.Brands) != 0 {
		t.Errorf("Expected empty lists, got %+v", set)
	}
	if set.PriceRange != (types.PriceRange{}) {
		t.Errorf("Expected zero price range, got %+v", set.PriceRange)
	}
}

func TestComputeGlobalScope(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Brand = "apple"
	c := &Computer{Scope: ScopeGlobal}
	set, err := c.Compute(context.Background(), createStore(), spec)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Brands) != 4 || len(set.Oses) != 2 {
		t.Errorf("Expected every catalog value, got %v %v", set.Brands, set.Oses)
	}
}

func TestSelectedValueKeptUnderGlobalScope(t *testing.T) {
	spec := types.NewFilterSpec()
	spec.Ram = []string{"64GB"}
	c := &Computer{Scope: ScopeGlobal}
	set, err := c.Compute(context.Background(), createStore(), spec)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(set.Rams) != "[12GB 16GB 64GB 8GB]" {
		t.Errorf("Expected the selected ram to be listed with the catalog values, got %v", set.Rams)
	}
}

type failingSource struct{}

var errBroken = errors.New("broken")

func (failingSource) Count(context.Context, *query.Predicate) (int, error) { return 0, errBroken }
func (failingSource) Find(context.Context, query.Query) ([]types.Product, error) {
	return nil, errBroken
}
func (failingSource) Scan(context.Context, *query.Predicate, func(*types.Product)) error {
	return errBroken
}

func TestComputePropagatesErrors(t *testing.T) {
	c := &Computer{}
	_, err := c.Compute(context.Background(), failingSource{}, types.NewFilterSpec())
	if !errors.Is(err, errBroken) {
		t.Errorf("Expected source error, got %v", err)
	}
}
