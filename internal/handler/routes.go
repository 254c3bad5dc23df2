package handler

import (
	"net/http"

	"github.com/tripnosis/tripnosis/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
// A nil limiter disables rate limiting on register and login.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, limiter *service.RateLimiter, metrics *Metrics, cookieSecure bool) {
	authHandler := NewAuthHandler(auth, metrics, cookieSecure)

	mux.Handle("POST /api/auth/register", metrics.Instrument("register",
		RateLimit(limiter, http.HandlerFunc(authHandler.HandleRegister))))
	mux.Handle("POST /api/auth/login", metrics.Instrument("login",
		RateLimit(limiter, http.HandlerFunc(authHandler.HandleLogin))))
	mux.Handle("POST /api/auth/logout", metrics.Instrument("logout",
		http.HandlerFunc(authHandler.HandleLogout)))
	mux.Handle("GET /api/auth/me", metrics.Instrument("me",
		RequireAuth(auth, http.HandlerFunc(authHandler.HandleMe))))

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /", OptionalAuth(auth, http.HandlerFunc(HandleHome)))
}
