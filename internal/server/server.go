package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/efebarandurmaz/codeai/internal/catalog"
	"github.com/efebarandurmaz/codeai/internal/config"
	"github.com/efebarandurmaz/codeai/internal/normalize"
	"github.com/efebarandurmaz/codeai/internal/observability"
)

// Options wires a Server. Nil Catalog and Metrics get defaults.
type Options struct {
	Config    config.ServerConfig
	Normalize normalize.Options
	Catalog   *catalog.Catalog
	Metrics   *observability.Metrics
	Version   string
}

// Server is the codeai HTTP API.
type Server struct {
	cfg      config.ServerConfig
	normOpts normalize.Options
	parser   *normalize.Parser
	catalog  *catalog.Catalog
	metrics  *observability.Metrics
	health   *HealthServer
	limiter  *rate.Limiter
	handler  http.Handler
}

// New builds the route table and middleware chain.
func New(opts Options) *Server {
	s := &Server{
		cfg:      opts.Config,
		normOpts: opts.Normalize,
		parser:   normalize.NewParser(opts.Normalize),
		catalog:  opts.Catalog,
		metrics:  opts.Metrics,
		health:   NewHealthServer(opts.Version),
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics()
	}
	if rl := opts.Config.RateLimit; rl.RPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rl.RPS), rl.Burst)
	}

	s.health.RegisterCheck("normalizer", NormalizerHealthChecker(func(raw string) normalize.ParsedResult {
		return s.parser.Normalize(raw).Result
	}))
	s.health.RegisterCheck("catalog", CatalogHealthChecker(s.catalog))

	mux := http.NewServeMux()
	s.route(mux, "/v1/normalize", s.handleNormalize)
	s.route(mux, "/v1/segment", s.handleSegment)
	s.route(mux, "/v1/format", s.handleFormat)
	s.route(mux, "/v1/prompts/{kind}", s.handlePrompt)
	s.route(mux, "/v1/languages/suggest", s.handleSuggest)
	s.route(mux, "/v1/catalog", s.handleCatalog)
	mux.Handle("/metrics", s.instrument("/metrics", s.metrics.Handler()))
	s.health.Register(mux)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no route for %s", r.URL.Path))
	})

	s.handler = recoverMiddleware(corsMiddleware(loggingMiddleware(mux)))
	return s
}

// route mounts an API handler behind the rate limiter and metrics.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, s.rateLimit(h)))
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Health exposes the probe state.
func (s *Server) Health() *HealthServer {
	return s.health
}

// ListenAndServe listens on the configured address and serves until
// shutdown stops the server.
func (s *Server) ListenAndServe(shutdown *ShutdownHandler) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln, shutdown)
}

// Serve accepts connections on ln. It registers the readiness and HTTP
// shutdown hooks on shutdown and returns nil after a graceful stop.
func (s *Server) Serve(ln net.Listener, shutdown *ShutdownHandler) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	shutdown.Register(ReadinessShutdownHook(s.health))
	shutdown.Register(HTTPServerShutdownHook("http-server", srv.Shutdown))

	s.health.SetReady(true)
	slog.Info("Starting codeai API", "addr", ln.Addr().String())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server error: %w", err)
	}
	return nil
}
