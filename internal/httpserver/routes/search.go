package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/httpserver/handlers"
	"github.com/bambuco/boa/internal/httpserver/mw"
)

func init() { Register(registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             20,
		RefillPerIPPerMin: 120,
		TrustProxy:        d.TrustProxy,
	})
	r.With(limit, mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/search", handlers.Search(d))
}
