package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/httpserver/handlers"
	"github.com/bambuco/boa/internal/httpserver/mw"
)

func init() { Register(registerPlaylist) }

func registerPlaylist(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/playlist", handlers.Playlist(d))
}
