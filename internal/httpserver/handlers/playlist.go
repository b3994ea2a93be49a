package handlers

import (
	"net/http"

	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/player"
	"github.com/bambuco/boa/internal/resource"
	redisstore "github.com/bambuco/boa/internal/store/redis"
)

type playlistEntry struct {
	About   string `json:"about"`
	Title   string `json:"title,omitempty"`
	ID      string `json:"id,omitempty"`
	Preview string `json:"preview,omitempty"`
	Loaded  bool   `json:"loaded"`
}

type playlistPane struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Kind         string `json:"kind"`
	Markup       string `json:"markup"`
	Downloadable bool   `json:"downloadable"`
	FinalURI     string `json:"final_uri"`
}

type playlistResponse struct {
	CmID    int             `json:"cmid"`
	Entries []playlistEntry `json:"entries"`
	Active  *playlistPane   `json:"active,omitempty"`
}

// Playlist builds the learner view for a course module: the assigned
// resources in order, plus the pane of the first playable one.
func Playlist(d deps.Deps) http.HandlerFunc {
	store := redisstore.NewStore(d.RedisClient)

	return func(w http.ResponseWriter, r *http.Request) {
		cmid, ok := cmidParam(w, r)
		if !ok {
			return
		}

		abouts, err := store.GetSelection(r.Context(), cmid)
		if err != nil {
			d.Logger.Error("failed to read selection",
				logger.Int("cmid", cmid),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "selection storage unavailable")
			return
		}

		client := primaryBank(d, w)
		if client == nil {
			return
		}

		pl := player.NewPlayer(client, resource.ResolveOptions{ProxyPrefix: d.ProxyPrefix}, d.Logger)
		pl.Load(r.Context(), abouts)

		entries := make([]playlistEntry, 0, len(abouts))
		for _, e := range pl.Entries() {
			entry := playlistEntry{About: e.About}
			if e.Resource != nil {
				entry.Loaded = true
				entry.ID = e.Resource.ID
				entry.Title = e.Resource.Title()
				entry.Preview = resource.Preview(e.Resource)
			}
			entries = append(entries, entry)
		}

		response := playlistResponse{CmID: cmid, Entries: entries}
		if pane, ok := pl.Active(); ok {
			response.Active = &playlistPane{
				ID:           pane.ID,
				Title:        pane.Title,
				Kind:         pane.Embed.Kind.String(),
				Markup:       pane.Embed.Markup,
				Downloadable: pane.Embed.Downloadable,
				FinalURI:     pane.FinalURI,
			}
		}

		writeJSON(w, http.StatusOK, response)
	}
}
