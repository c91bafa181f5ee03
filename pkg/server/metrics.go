package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskfacets_searches_total",
		Help: "The total number of processed searches",
	})
	facetSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskfacets_facets_total",
		Help: "The total number of processed facet requests",
	})
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskfacets_cache_hits_total",
		Help: "The total number of responses served from cache",
	})
	searchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskfacets_search_errors_total",
		Help: "The total number of failed searches by status code",
	}, []string{"code"})
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "slaskfacets_request_duration_seconds",
		Help:    "Time spent computing responses that were not cached",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
