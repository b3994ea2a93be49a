package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bambuco/boa/internal/bank"
	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/resource"
)

type resourceResponse struct {
	About        string               `json:"about"`
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	Keywords     string               `json:"keywords,omitempty"`
	Kind         string               `json:"kind"`
	Downloadable bool                 `json:"downloadable"`
	Markup       string               `json:"markup"`
	Preview      string               `json:"preview"`
	FinalURI     string               `json:"final_uri"`
	Share        []resource.ShareLink `json:"share,omitempty"`
}

// Resource serves the detail view of one resource: its resolved embed
// markup plus the metadata a detail pane shows.
func Resource(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		about := strings.TrimSpace(r.URL.Query().Get("about"))
		if about == "" {
			writeError(w, http.StatusBadRequest, "missing about parameter")
			return
		}

		client := primaryBank(d, w)
		if client == nil {
			return
		}

		res, err := client.Fetch(r.Context(), about)
		if err != nil {
			var apiErr *bank.APIError
			if errors.As(err, &apiErr) {
				writeError(w, http.StatusNotFound, apiErr.Message)
				return
			}
			d.Logger.Error("resource fetch failed",
				logger.String("about", about),
				logger.Error(err))
			writeError(w, http.StatusBadGateway, "repository unreachable")
			return
		}

		embed := resource.Resolve(res, resource.ResolveOptions{ProxyPrefix: d.ProxyPrefix})

		writeJSON(w, http.StatusOK, resourceResponse{
			About:        res.About,
			ID:           res.ID,
			Title:        res.Title(),
			Description:  res.Description(),
			Keywords:     res.Keywords(),
			Kind:         embed.Kind.String(),
			Downloadable: embed.Downloadable,
			Markup:       embed.Markup,
			Preview:      resource.Preview(res),
			FinalURI:     resource.FinalURI(res),
			Share:        resource.ShareLinks(d.Catalogue.Networks(), res),
		})
	}
}
