package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/bambuco/boa/internal/bank"
	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/logger"
)

type suggestResponse struct {
	Query       string            `json:"query"`
	Suggestions []bank.Suggestion `json:"suggestions"`
}

// Suggest serves typeahead candidates for a partial query. Queries below
// the minimum length answer with an empty list rather than an error, so
// clients can call it on every keystroke.
func Suggest(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if len([]rune(q)) < d.MinLetters {
			writeJSON(w, http.StatusOK, suggestResponse{Query: q, Suggestions: []bank.Suggestion{}})
			return
		}

		client := primaryBank(d, w)
		if client == nil {
			return
		}

		suggestions, err := client.Suggest(r.Context(), q, d.SuggestionsSize, parseFilters(r))
		if err != nil {
			var apiErr *bank.APIError
			if errors.As(err, &apiErr) {
				d.Logger.Warn("bank rejected suggestion query",
					logger.String("query", q),
					logger.Error(apiErr))
				writeError(w, http.StatusBadGateway, apiErr.Message)
				return
			}
			d.Logger.Error("suggestion query failed",
				logger.String("query", q),
				logger.Error(err))
			writeError(w, http.StatusBadGateway, "repository unreachable")
			return
		}

		sort.SliceStable(suggestions, func(i, j int) bool {
			return suggestions[i].Size > suggestions[j].Size
		})
		if suggestions == nil {
			suggestions = []bank.Suggestion{}
		}

		writeJSON(w, http.StatusOK, suggestResponse{Query: q, Suggestions: suggestions})
	}
}

// parseFilters reads repeated f=meta:value params into bank filters.
func parseFilters(r *http.Request) []bank.Filter {
	raw := r.URL.Query()["f"]
	if len(raw) == 0 {
		return nil
	}

	grouped := make(map[string][]string)
	order := make([]string, 0, len(raw))
	for _, term := range raw {
		meta, value, ok := strings.Cut(term, ":")
		if !ok || meta == "" || value == "" {
			continue
		}
		if _, seen := grouped[meta]; !seen {
			order = append(order, meta)
		}
		grouped[meta] = append(grouped[meta], value)
	}

	filters := make([]bank.Filter, 0, len(order))
	for _, meta := range order {
		filters = append(filters, bank.Filter{Meta: meta, Values: grouped[meta]})
	}
	return filters
}
