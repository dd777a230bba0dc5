// Package server exposes the scanner over HTTP and MCP. Both transports
// share the same kit endpoints: extract, history listing, retrieval, and
// deletion. Extraction results are cached by normalized URL so repeated
// requests for the same site skip the render entirely.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"brandscan/internal/kit"
	"brandscan/internal/scan"
	"brandscan/internal/store"
)

const (
	defaultCacheSize = 128
	defaultCacheTTL  = 15 * time.Minute
)

// ScanRunner runs one extraction.
type ScanRunner interface {
	Scan(ctx context.Context, rawURL string) (*scan.Result, error)
}

// Config configures a Server.
type Config struct {
	Scanner ScanRunner
	Store   *store.Store

	CacheSize int
	CacheTTL  time.Duration

	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.CacheSize == 0 {
		c.CacheSize = defaultCacheSize
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Server holds the endpoints and their transports.
type Server struct {
	cfg    Config
	cache  *expirable.LRU[string, *scan.Result]
	router *chi.Mux
	log    *slog.Logger

	extract      kit.Endpoint
	historyList  kit.Endpoint
	historyGet   kit.Endpoint
	historyDrop  kit.Endpoint
	historyClear kit.Endpoint
}

// New builds a Server.
func New(cfg Config) *Server {
	cfg.applyDefaults()
	s := &Server{
		cfg:   cfg,
		cache: expirable.NewLRU[string, *scan.Result](cfg.CacheSize, nil, cfg.CacheTTL),
		log:   cfg.Logger,
	}
	s.buildEndpoints()
	s.buildRouter()
	return s
}

func (s *Server) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Get("/history", s.handleHistoryList)
		r.Get("/history/{id}", s.handleHistoryGet)
		r.Delete("/history/{id}", s.handleHistoryDelete)
		r.Delete("/history", s.handleHistoryClear)
	})
	r.Get("/healthz", s.handleHealth)

	s.router = r
}

// timed logs each endpoint invocation with its duration.
func timed(log *slog.Logger, name string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			log.Debug("endpoint done",
				"endpoint", name,
				"transport", kit.GetTransport(ctx),
				"duration", time.Since(start),
				"error", err)
			return resp, err
		}
	}
}
