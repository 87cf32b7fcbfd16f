// Package http exposes the engine over a JSON API. Presentation code
// built on top of it never reimplements currency or cycle math: every
// figure it needs is computed here through the core functions.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "submanager/internal/log"
	"submanager/internal/rates"
	"submanager/internal/service"
	"submanager/internal/store"
)

type Server struct {
	http.Server

	store    *store.Store
	subs     *service.SubscriptionService
	provider *rates.Provider

	rateLimiter  *rateLimiter
	summaryCache *lruCache[summaryResponse]

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(addr string, st *store.Store, subs *service.SubscriptionService, provider *rates.Provider) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:        st,
		subs:         subs,
		provider:     provider,
		rateLimiter:  newRateLimiter(),
		summaryCache: newLRUCache[summaryResponse](16, 5*time.Minute),
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/subscriptions", s.withMiddleware(s.handleSubscriptions))
	mux.HandleFunc("/api/subscriptions/", s.withMiddleware(s.handleSubscriptionByID))
	mux.HandleFunc("/api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/api/preferences/currency", s.withMiddleware(s.handleBaseCurrency))
	mux.HandleFunc("/api/preferences/viewmode/toggle", s.withMiddleware(s.handleToggleViewMode))
	mux.HandleFunc("/api/rates", s.withMiddleware(s.handleRates))
	mux.HandleFunc("/api/rates/refresh", s.withMiddleware(s.handleRefreshRates))
	mux.HandleFunc("/api/suggest", s.withMiddleware(s.handleSuggest))

	return s
}

// withMiddleware adds security headers, request logging, and rate
// limiting for mutating methods.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			errorJSON(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The store is loaded before the server starts; once it answers a
	// snapshot the service is ready.
	subs, prefs, _ := s.store.Snapshot()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ready",
		"subscriptions": len(subs),
		"baseCurrency":  prefs.BaseCurrency,
		"cacheEntries":  s.summaryCache.Size(),
	})
}

// Shutdown stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
