// Package http exposes the JSON API: records CRUD, aggregate stats,
// AI analytics, currency settings, and the auth endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"masarify/internal/analytics"
	"masarify/internal/auth"
	applog "masarify/internal/log"
	"masarify/internal/prefs"
	"masarify/internal/services"
)

type Server struct {
	http.Server

	records *services.RecordService
	tracker *analytics.Tracker
	prefs   *prefs.Service
	authc   *auth.Client
	session *auth.Holder
	logger  *applog.Logger
	limiter *rateLimiter

	shutdownOnce sync.Once
}

// Options carries the collaborators the server needs. Tracker and
// AuthClient may be nil; the matching endpoints answer 503.
type Options struct {
	Addr       string
	Records    *services.RecordService
	Tracker    *analytics.Tracker
	Prefs      *prefs.Service
	AuthClient *auth.Client
	Session    *auth.Holder
	Logger     *applog.Logger
}

func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		records: opts.Records,
		tracker: opts.Tracker,
		prefs:   opts.Prefs,
		authc:   opts.AuthClient,
		session: opts.Session,
		logger:  logger.WithComponent(applog.ComponentHTTP),
		limiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/records", s.withMiddleware(s.handleListRecords))
	mux.HandleFunc("POST /api/records", s.withMiddleware(s.handleCreateRecord))
	mux.HandleFunc("DELETE /api/records", s.withMiddleware(s.handleResetRecords))
	mux.HandleFunc("GET /api/records/{id}", s.withMiddleware(s.handleGetRecord))
	mux.HandleFunc("PATCH /api/records/{id}", s.withMiddleware(s.handleUpdateRecord))
	mux.HandleFunc("DELETE /api/records/{id}", s.withMiddleware(s.handleDeleteRecord))

	mux.HandleFunc("GET /api/stats", s.withMiddleware(s.handleStats))

	mux.HandleFunc("GET /api/analytics", s.withMiddleware(s.handleAnalytics))
	mux.HandleFunc("POST /api/analytics/refresh", s.withMiddleware(s.handleAnalyticsRefresh))

	mux.HandleFunc("GET /api/settings/currency", s.withMiddleware(s.handleGetCurrency))
	mux.HandleFunc("PUT /api/settings/currency", s.withMiddleware(s.handleSetCurrency))

	mux.HandleFunc("GET /api/auth/session", s.withMiddleware(s.handleSession))
	mux.HandleFunc("POST /api/auth/login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("POST /api/auth/signup", s.withMiddleware(s.handleSignup))
	mux.HandleFunc("POST /api/auth/verify", s.withMiddleware(s.handleVerify))
	mux.HandleFunc("POST /api/auth/resend", s.withMiddleware(s.handleResend))
	mux.HandleFunc("POST /api/auth/logout", s.withMiddleware(s.handleLogout))

	return s
}

// withMiddleware adds security headers, mutation rate limiting, request
// IDs, and request logging around a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := clientAddr(r)
		requestID := uuid.NewString()

		ctx := applog.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		if isMutation(r.Method) && !s.limiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter janitor and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
