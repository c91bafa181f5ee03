package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/slask-facets/pkg/catalog"
	"github.com/matst80/slask-facets/pkg/common"
	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	"github.com/matst80/slask-facets/pkg/search"
	"github.com/matst80/slask-facets/pkg/types"
)

const (
	searchCachePrefix = "search:"
	facetsCachePrefix = "facets:"
)

type Server struct {
	Search   *search.Service
	Cache    ResponseCache
	CacheTTL time.Duration
	// ClientCacheTime is sent as stale-while-revalidate seconds.
	ClientCacheTime string

	// generation is bumped on every catalog change. A response computed
	// under an older generation is served but never cached.
	genMu      sync.RWMutex
	generation uint64
}

func NewServer(svc *search.Service, cache ResponseCache) *Server {
	return &Server{
		Search:          svc,
		Cache:           cache,
		CacheTTL:        5 * time.Minute,
		ClientCacheTime: "120",
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestId string `json:"requestId"`
}

type facetsResponse struct {
	Facets types.FacetSet `json:"filters"`
}

func (s *Server) Handle() *http.ServeMux {
	srv := http.NewServeMux()
	srv.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv.HandleFunc("/search", common.JsonHandler(s.SearchHandler))
	srv.HandleFunc("/facets", common.JsonHandler(s.FacetsHandler))
	return srv
}

func requestId(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set("X-Request-Id", id)
	return id
}

func (s *Server) SearchHandler(w http.ResponseWriter, r *http.Request, enc jsoncompat.Encoder) error {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nil
	}
	go noSearches.Inc()
	id := requestId(w, r)
	spec, err := types.GetFilterSpecFromRequest(r)
	if err != nil {
		// malformed values fall back to defaults, the request is still served
		log.Printf("request %s: ignoring malformed filter values: %v", id, err)
	}
	key := searchCachePrefix + spec.Encode()

	common.DefaultHeaders(w, r, s.ClientCacheTime)
	if s.serveCached(w, r, key) {
		return nil
	}

	gen := s.currentGeneration()
	start := time.Now()
	res, err := s.Search.Search(r.Context(), spec)
	searchDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	if err != nil {
		return s.writeError(w, r, enc, id, err)
	}
	return s.writeResponse(w, r, enc, key, gen, res)
}

func (s *Server) FacetsHandler(w http.ResponseWriter, r *http.Request, enc jsoncompat.Encoder) error {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nil
	}
	go facetSearches.Inc()
	id := requestId(w, r)
	spec, err := types.GetFilterSpecFromRequest(r)
	if err != nil {
		log.Printf("request %s: ignoring malformed filter values: %v", id, err)
	}
	// paging and sorting never change facet values
	spec.Page = 1
	spec.Sort = types.DefaultSort
	spec.Order = types.DefaultOrder
	spec.PageSize = types.DefaultPageSize
	key := facetsCachePrefix + spec.Encode()

	common.DefaultHeaders(w, r, s.ClientCacheTime)
	if s.serveCached(w, r, key) {
		return nil
	}

	gen := s.currentGeneration()
	start := time.Now()
	facets, err := s.Search.GetFacets(r.Context(), spec)
	searchDuration.WithLabelValues("facets").Observe(time.Since(start).Seconds())
	if err != nil {
		return s.writeError(w, r, enc, id, err)
	}
	return s.writeResponse(w, r, enc, key, gen, facetsResponse{Facets: facets})
}

func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if s.Cache == nil {
		return false
	}
	data, err := s.Cache.GetRaw(r.Context(), key)
	if err != nil {
		return false
	}
	go cacheHits.Inc()
	w.Header().Set("X-Cache", "HIT")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
	return true
}

func (s *Server) currentGeneration() uint64 {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	return s.generation
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, enc jsoncompat.Encoder, key string, gen uint64, body any) error {
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	if s.Cache == nil {
		return enc.Encode(body)
	}
	out, cw := MakeCacheWriter(w, key, s.CacheTTL, s.Cache.SetRaw)
	if err := jsoncompat.NewEncoder(out).Encode(body); err != nil {
		return err
	}
	// the request context may already be done once the client has its body
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), time.Second)
	defer cancel()
	// CatalogChanged can not bump the generation while a commit holds the read lock
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	if gen != s.generation {
		log.Printf("catalog changed while computing %s, not caching", key)
		return nil
	}
	cw.Commit(ctx)
	return nil
}

// writeError maps failures to a status. The catalog being down is reported as
// 503 and left to the caller to retry.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, enc jsoncompat.Encoder, id string, err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	status := http.StatusInternalServerError
	message := "internal error"
	if errors.Is(err, catalog.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
		message = "catalog unavailable"
	}
	searchErrors.WithLabelValues(strconv.Itoa(status)).Inc()
	log.Printf("request %s %s failed: %v", id, r.URL.RequestURI(), err)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	return enc.Encode(errorResponse{Error: message, RequestId: id})
}

// CatalogChanged drops cached responses, stale pages must not outlive an update.
func (s *Server) CatalogChanged() {
	s.genMu.Lock()
	s.generation++
	s.genMu.Unlock()
	if s.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Cache.Clear(ctx); err != nil {
		log.Printf("unable to clear response cache: %v", err)
	}
}

var _ catalog.ChangeHandler = (*Server)(nil)
