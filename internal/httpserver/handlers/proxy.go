package handlers

import (
	"net/http"

	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/proxy"
)

// Proxy relays repository content through the plugin's origin. The
// allow-list is rebuilt per request from the catalogue so a repositories
// reload takes effect immediately.
func Proxy(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := proxy.New(d.ProxyPrefix, d.Catalogue.Hosts(), d.ProxyHTTP, d.Logger)
		p.ServeHTTP(w, r)
	}
}
