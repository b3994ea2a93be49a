package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/selection"
	redisstore "github.com/bambuco/boa/internal/store/redis"
)

type selectionPayload struct {
	CmID int      `json:"cmid"`
	List []string `json:"list"`
}

type selectionSavedResponse struct {
	Saved bool `json:"saved"`
	Count int  `json:"count"`
}

// GetSelection returns the persisted selection for a course module.
func GetSelection(d deps.Deps) http.HandlerFunc {
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
		if abouts == nil {
			abouts = []string{}
		}

		writeJSON(w, http.StatusOK, selectionPayload{CmID: cmid, List: abouts})
	}
}

// SaveSelection replaces a course module's selection with the posted key
// set. The write is all-or-nothing; partial selections are never stored.
func SaveSelection(d deps.Deps) http.HandlerFunc {
	store := redisstore.NewStore(d.RedisClient)

	return func(w http.ResponseWriter, r *http.Request) {
		var payload selectionPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid selection payload")
			return
		}
		if payload.CmID <= 0 {
			writeError(w, http.StatusBadRequest, "missing cmid")
			return
		}

		mgr := selection.NewManager(payload.CmID, nil, store, d.Logger)
		mgr.SeedURIs(payload.List)

		if err := mgr.Save(r.Context()); err != nil {
			d.Logger.Error("failed to save selection",
				logger.Int("cmid", payload.CmID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "selection storage unavailable")
			return
		}

		d.Logger.Info("selection saved",
			logger.Int("cmid", payload.CmID),
			logger.Int("count", mgr.Len()))
		writeJSON(w, http.StatusOK, selectionSavedResponse{Saved: true, Count: mgr.Len()})
	}
}

func cmidParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("cmid")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing cmid")
		return 0, false
	}
	cmid, err := strconv.Atoi(raw)
	if err != nil || cmid <= 0 {
		writeError(w, http.StatusBadRequest, "invalid cmid")
		return 0, false
	}
	return cmid, true
}
