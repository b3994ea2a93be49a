package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/httpserver/handlers"
	"github.com/bambuco/boa/internal/httpserver/mw"
)

func init() { Register(registerSuggest) }

func registerSuggest(r chi.Router, d deps.Deps) {
	// Typeahead fires on every keystroke, so this route gets its own
	// generous per-IP budget.
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             30,
		RefillPerIPPerMin: 300,
		TrustProxy:        d.TrustProxy,
	})
	r.With(limit, mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/suggest", handlers.Suggest(d))
}
