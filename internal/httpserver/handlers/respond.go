package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bambuco/boa/internal/bank"
	"github.com/bambuco/boa/internal/httpserver/deps"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// primaryBank builds a client for the first configured repository. Returns
// nil after writing a 503 when no repository is loaded yet.
func primaryBank(d deps.Deps, w http.ResponseWriter) *bank.Client {
	repo, ok := d.Catalogue.Primary()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no repository configured")
		return nil
	}
	return bank.New(repo.URI, d.BankHTTP, d.Logger)
}
