package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/httpserver/handlers"
	"github.com/bambuco/boa/internal/httpserver/mw"
)

func init() { Register(registerSelection) }

func registerSelection(r chi.Router, d deps.Deps) {
	guarded := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	guarded.Get("/selection", handlers.GetSelection(d))
	guarded.Post("/selection", handlers.SaveSelection(d))
}
