package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"strings"
	"time"

	"github.com/matst80/slask-facets/pkg/cache"
	"github.com/matst80/slask-facets/pkg/catalog"
	"github.com/matst80/slask-facets/pkg/common"
	"github.com/matst80/slask-facets/pkg/facet"
	"github.com/matst80/slask-facets/pkg/search"
	"github.com/matst80/slask-facets/pkg/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
)

var enableProfiling = flag.Bool("profiling", true, "enable profiling endpoints")
var country = common.EnvOr("COUNTRY", "se")
var listenAddress = common.EnvOr("LISTEN_ADDRESS", ":8080")
var debugAddress = common.EnvOr("DEBUG_ADDRESS", ":8081")
var catalogFile = common.EnvOr("CATALOG_FILE", "data/products.jsonl.gz")
var redisUrl = os.Getenv("REDIS_URL")
var redisPassword = os.Getenv("REDIS_PASSWORD")
var rabbitUrl = os.Getenv("RABBIT_HOST")
var facetScope = common.EnvOr("FACET_SCOPE", facet.ScopePerDimension.String())
var cacheTTL = common.EnvSeconds("CACHE_TTL", 5*time.Minute)

type app struct {
	store  *catalog.MemoryStore
	server *server.Server
	cache  *cache.Cache
	conn   *amqp.Connection
}

func (a *app) saveIfDirty() error {
	if !a.store.IsDirty() {
		return nil
	}
	log.Printf("Saving %d products to %s", a.store.Len(), catalogFile)
	return a.store.SaveFile(catalogFile)
}

func (a *app) saveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			if err := a.saveIfDirty(); err != nil {
				log.Printf("Failed to save catalog: %v", err)
			}
		}
	}()
}

func parseScope(value string) facet.Scope {
	if strings.EqualFold(value, facet.ScopeGlobal.String()) {
		return facet.ScopeGlobal
	}
	return facet.ScopePerDimension
}

func main() {
	flag.Parse()

	store := catalog.NewMemoryStore()
	if err := store.LoadFile(catalogFile); err != nil {
		log.Fatalf("Could not load catalog from %s: %v", catalogFile, err)
	}

	svc := search.NewService(store, parseScope(facetScope))
	srv := server.NewServer(svc, nil)
	srv.CacheTTL = cacheTTL

	a := &app{store: store, server: srv}

	if redisUrl != "" {
		a.cache = cache.NewCache(redisUrl, redisPassword, 0, country+":")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.cache.Ping(ctx); err != nil {
			log.Printf("Redis not reachable, serving without shared cache: %v", err)
		}
		cancel()
		srv.Cache = a.cache
	}
	store.ChangeHandler = srv

	if rabbitUrl != "" {
		if err := a.ConnectAmqp(rabbitUrl); err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		a.saveLoop(time.Minute)
	}

	timeouts := common.LoadTimeoutConfig(common.DefaultTimeoutConfig())

	mux := http.NewServeMux()
	mux.Handle("/", srv.Handle())

	debugMux := http.NewServeMux()
	debugMux.Handle("/metrics", promhttp.Handler())
	if enableProfiling != nil && *enableProfiling {
		log.Println("Profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	servers := []*http.Server{
		common.NewServerWithTimeouts(listenAddress, mux, timeouts),
		{Addr: debugAddress, Handler: debugMux, ReadHeaderTimeout: timeouts.ReadHeader},
	}

	common.RunServersWithShutdown(servers, timeouts,
		func(ctx context.Context) error {
			return a.saveIfDirty()
		},
		func(ctx context.Context) error {
			if a.conn != nil {
				return a.conn.Close()
			}
			return nil
		},
		func(ctx context.Context) error {
			if a.cache != nil {
				return a.cache.Close()
			}
			return nil
		},
	)
	log.Println("Storefront stopped")
}
