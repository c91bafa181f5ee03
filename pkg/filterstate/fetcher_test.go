package filterstate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matst80/slask-facets/pkg/catalog"
	"github.com/matst80/slask-facets/pkg/facet"
	"github.com/matst80/slask-facets/pkg/search"
	"github.com/matst80/slask-facets/pkg/server"
	"github.com/matst80/slask-facets/pkg/types"
)

func storefront(t *testing.T) *httptest.Server {
	t.Helper()
	store := catalog.NewMemoryStore()
	store.Upsert(
		types.Product{Id: "1", Name: "iPhone 15", Brand: "Apple", Category: "Phones", SellingPrice: 12000, Stock: 2, Specification: types.Specification{Ram: "8GB"}},
		types.Product{Id: "2", Name: "Galaxy S24", Brand: "Samsung", Category: "Phones", SellingPrice: 9000, Stock: 0, Specification: types.Specification{Ram: "12GB"}},
		types.Product{Id: "3", Name: "Pineapple Case", Brand: "Generic", Category: "Accessories", SellingPrice: 200, Stock: 10},
	)
	srv := server.NewServer(search.NewService(store, facet.ScopePerDimension), nil)
	ts := httptest.NewServer(srv.Handle())
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPFetcher(t *testing.T) {
	ts := storefront(t)
	f := NewHTTPFetcher(ts.URL + "/")
	spec := types.NewFilterSpec()
	spec.Search = "apple"
	res, err := f.Fetch(context.Background(), spec)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalCount != 2 || res.Page != 1 || res.TotalPages != 1 {
		t.Errorf("Expected two matches on one page, got %+v", res)
	}
	if len(res.Facets.Categories) != 2 {
		t.Errorf("Expected categories of the matches, got %v", res.Facets.Categories)
	}

	spec = types.NewFilterSpec()
	spec.InStockOnly = true
	spec.Ram = []string{"8GB", "12GB"}
	res, err = f.Fetch(context.Background(), spec)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalCount != 1 || res.Items[0].Id != "1" {
		t.Errorf("Expected only the stocked 8GB phone, got %+v", res.Items)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()
	_, err := NewHTTPFetcher(ts.URL).Fetch(context.Background(), types.NewFilterSpec())
	var status *StatusError
	if !errors.As(err, &status) || status.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Expected status error, got %v", err)
	}
	if !errors.Is(err, catalog.ErrUnavailable) {
		t.Error("Expected 503 to map to an unavailable catalog")
	}
}

func TestEngineAgainstServer(t *testing.T) {
	ts := storefront(t)
	results := make(chan *types.QueryResult, 4)
	var written string
	e := NewEngine(NewHTTPFetcher(ts.URL), types.NewFilterSpec(), Options{
		Debounce: 10 * time.Millisecond,
		URL:      URLWriterFunc(func(rawQuery string) { written = rawQuery }),
		OnResult: func(spec types.FilterSpec, result *types.QueryResult) {
			results <- result
		},
	})
	defer e.Close()

	e.Update(func(spec *types.FilterSpec) {
		spec.Category = "phones"
		spec.Sort = types.SortSellingPrice
		spec.Order = types.OrderAsc
	})
	select {
	case res := <-results:
		if res.TotalCount != 2 || res.Items[0].Id != "2" {
			t.Errorf("Expected phones sorted by price, got %+v", res.Items)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected a result from the server")
	}
	if written != "category=phones&order=asc&sort=sellingPrice" {
		t.Errorf("Unexpected url %q", written)
	}
}
