package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/cache"
)

// Config holds server configuration
type Config struct {
	Addr string

	// RateLimit is in requests per second; zero or less disables limiting
	RateLimit float64
	RateBurst int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		RateLimit:    100,
		RateBurst:    200,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// NewHTTPServer returns a new HTTP server
func NewHTTPServer(cfg Config, logger *slog.Logger, results cache.Cache) *http.Server {
	server := newHTTPServer(logger, results)
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.routes(newLimiter(cfg)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

type httpServer struct {
	log   *slog.Logger
	cache cache.Cache
}

func newHTTPServer(logger *slog.Logger, results cache.Cache) *httpServer {
	if logger == nil {
		logger = slog.Default()
	}
	if results == nil {
		results = cache.Noop{}
	}
	return &httpServer{
		log:   logger,
		cache: results,
	}
}

func newLimiter(cfg Config) *rate.Limiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
}

func (h *httpServer) routes(limiter *rate.Limiter) http.Handler {
	r := mux.NewRouter()
	r.Use(withRequestID, h.withLogging)
	r.NotFoundHandler = withRequestID(http.HandlerFunc(h.notFound))
	r.MethodNotAllowedHandler = withRequestID(http.HandlerFunc(h.methodNotAllowed))

	// System endpoints (no rate limiting)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(withRateLimit(limiter))
	api.HandleFunc("/tco", h.GetTCO).Methods(http.MethodGet)
	api.HandleFunc("/tco", h.PostTCO).Methods(http.MethodPost)
	api.HandleFunc("/validate", h.PostValidate).Methods(http.MethodPost)
	api.HandleFunc("/defaults", h.GetDefaults).Methods(http.MethodGet)

	return r
}
