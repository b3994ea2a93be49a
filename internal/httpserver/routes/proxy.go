package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/httpserver/handlers"
)

func init() { Register(registerProxy) }

func registerProxy(r chi.Router, d deps.Deps) {
	// No host guard here: framed content loads the proxy from the LMS
	// page, and the target allow-list already bounds what it can reach.
	r.Get(d.ProxyPrefix+"*", handlers.Proxy(d))
}
