// Package ratelimitserver is an HTTP server protected by a rate limit, it's
// used to check a throttled client never trips the limit of the server.
package ratelimitserver

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultErrorMessage is the message returned when the rate limit is exceeded.
const DefaultErrorMessage = "rate limit exceeded"

// Config is the configuration of the server.
type Config struct {
	// Store decides if a hit is allowed.
	Store Store
	// ErrorMessage is the message of the body when rejecting a request.
	ErrorMessage string
	// Logger is the logger of the server.
	Logger *zap.Logger
	// Gatherer if set the metrics will be exposed on /metrics.
	Gatherer prometheus.Gatherer
}

func (c *Config) defaults() error {
	if c.Store == nil {
		return errors.New("a store is required")
	}

	if c.ErrorMessage == "" {
		c.ErrorMessage = DefaultErrorMessage
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return nil
}

// CountResponse is the body of an allowed request.
type CountResponse struct {
	Count int64  `json:"count"`
	ID    string `json:"id"`
}

// MessageResponse is the body of a rejected request.
type MessageResponse struct {
	Message string `json:"message"`
}

// Server is the rate limited HTTP server.
type Server struct {
	cfg    Config
	count  atomic.Int64
	router chi.Router
}

// New returns a new rate limited server.
func New(cfg Config) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/", s.handleCount)
	})
	s.router = r

	return s, nil
}

// ServeHTTP satisfies http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Count returns the number of allowed requests.
func (s *Server) Count() int64 {
	return s.count.Load()
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		allowed, err := s.cfg.Store.Hit(r.Context(), key)
		if err != nil {
			s.cfg.Logger.Error("rate limit store failed", zap.String("key", key), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "rate limit store failed"})
			return
		}

		if !allowed {
			s.cfg.Logger.Debug("request rejected", zap.String("key", key))
			writeJSON(w, http.StatusTooManyRequests, MessageResponse{Message: s.cfg.ErrorMessage})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCount(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Request-ID", id)
	writeJSON(w, http.StatusOK, CountResponse{
		Count: s.count.Add(1),
		ID:    id,
	})
}

// clientKey returns the IP of the client, if it can't be parsed the whole
// remote address is used.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
