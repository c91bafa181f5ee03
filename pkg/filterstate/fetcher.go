package filterstate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matst80/slask-facets/pkg/catalog"
	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	"github.com/matst80/slask-facets/pkg/types"
)

type Fetcher interface {
	Fetch(ctx context.Context, spec types.FilterSpec) (*types.QueryResult, error)
}

type FetcherFunc func(ctx context.Context, spec types.FilterSpec) (*types.QueryResult, error)

func (f FetcherFunc) Fetch(ctx context.Context, spec types.FilterSpec) (*types.QueryResult, error) {
	return f(ctx, spec)
}

type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search request failed with status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusServiceUnavailable {
		return catalog.ErrUnavailable
	}
	return nil
}

// HTTPFetcher queries a storefront server over GET /search.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPFetcher) url(spec types.FilterSpec) string {
	u := f.BaseURL + "/search"
	if q := spec.Encode(); q != "" {
		u += "?" + q
	}
	return u
}

func (f *HTTPFetcher) Fetch(ctx context.Context, spec types.FilterSpec) (*types.QueryResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url(spec), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: res.StatusCode}
	}
	result := &types.QueryResult{}
	if err := jsoncompat.NewDecoder(res.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return result, nil
}
