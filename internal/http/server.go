// Package http exposes the JSON API for the expense tracker.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"tally/internal/auth"
	"tally/internal/middleware/trace"
	"tally/internal/services"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "tally_session"

type sessionKeyType struct{}

var sessionKey sessionKeyType

// Server wires the JSON API routes onto an http.Server.
type Server struct {
	http.Server
	ledger       *services.LedgerService
	accounts     *services.AuthService
	sessions     *auth.JWTManager
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, ledger *services.LedgerService, accounts *services.AuthService, sessions *auth.JWTManager) *Server {
	router := mux.NewRouter()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: router,
		},
		ledger:      ledger,
		accounts:    accounts,
		sessions:    sessions,
		rateLimiter: newRateLimiter(),
	}

	tracer := trace.NewMiddleware(extractClientIP)
	router.Use(tracer.Middleware)
	router.Use(securityHeaders)
	router.Use(s.limitWrites)

	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", handleReady).Methods(http.MethodGet)
	router.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	router.HandleFunc("/verify-otp", s.handleVerifyOTP).Methods(http.MethodPost)
	router.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	authed := router.PathPrefix("/").Subrouter()
	authed.Use(s.requireSession)
	authed.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	authed.HandleFunc("/monthly-summary", s.handleMonthlySummary).Methods(http.MethodGet)
	authed.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/{id:[0-9]+}", s.handleDeleteTransaction).Methods(http.MethodDelete)
	authed.HandleFunc("/budgets", s.handleSetBudget).Methods(http.MethodPost)
	authed.HandleFunc("/categories", s.handleAddCategory).Methods(http.MethodPost)

	return s
}

// limitWrites applies per-IP rate limiting to mutating requests.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			clientIP := extractClientIP(r)
			if !s.rateLimiter.allow(clientIP) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests,
					errorResponse{Error: "rate limit exceeded, please try again later"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession validates the session cookie and attaches the claims to the
// request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			writeError(w, r, auth.ErrMissingToken)
			return
		}
		claims, err := s.sessions.Validate(cookie.Value)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionClaims returns the verified claims for an authenticated request.
func sessionClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(sessionKey).(*auth.Claims)
	return claims
}

// Shutdown stops background routines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// SessionCookie builds the cookie carrying a freshly issued session token.
func (s *Server) SessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
