package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/bambuco/boa/internal/bank"
	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/resource"
)

type searchItem struct {
	About   string `json:"about"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
	Size    int    `json:"size,omitempty"`

	// HTML is the rendered list-item fragment, ready to insert.
	HTML string `json:"html"`
}

type searchResponse struct {
	Query string       `json:"query"`
	Start int          `json:"start"`
	Count int          `json:"count"`
	Items []searchItem `json:"items"`
}

// Search serves one page of resource results. Pages are cached for a
// short window keyed by the exact query, offset and filters, so repeated
// identical requests within the window cost one bank call.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if len([]rune(q)) < d.MinLetters {
			writeError(w, http.StatusBadRequest, "query too short")
			return
		}

		start := 0
		if s := r.URL.Query().Get("s"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "invalid start offset")
				return
			}
			start = n
		}

		filters := parseFilters(r)
		key := cacheKey(q, start, filters)

		if cached, ok := d.SearchCache.Lookup(key); ok {
			d.Logger.Debug("search cache hit", logger.String("query", q))
			writeJSON(w, http.StatusOK, buildSearchResponse(q, start, cached))
			return
		}
		d.SearchCache.Begin(key)

		client := primaryBank(d, w)
		if client == nil {
			return
		}

		results, err := client.Search(r.Context(), q, d.ResultsSize, start, filters)
		if err != nil {
			var apiErr *bank.APIError
			if errors.As(err, &apiErr) {
				d.Logger.Warn("bank rejected search",
					logger.String("query", q),
					logger.Error(apiErr))
				writeError(w, http.StatusBadGateway, apiErr.Message)
				return
			}
			d.Logger.Error("search failed",
				logger.String("query", q),
				logger.Error(err))
			writeError(w, http.StatusBadGateway, "repository unreachable")
			return
		}

		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Size > results[j].Size
		})
		d.SearchCache.Fill(key, results)

		writeJSON(w, http.StatusOK, buildSearchResponse(q, start, results))
	}
}

func cacheKey(q string, start int, filters []bank.Filter) string {
	var b strings.Builder
	b.WriteString(q)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(start))
	for _, f := range filters {
		for _, v := range f.Values {
			b.WriteByte('|')
			b.WriteString(f.Meta)
			b.WriteByte(':')
			b.WriteString(v)
		}
	}
	return b.String()
}

func buildSearchResponse(q string, start int, results []resource.Resource) searchResponse {
	items := make([]searchItem, 0, len(results))
	for i := range results {
		r := &results[i]
		items = append(items, searchItem{
			About:   r.About,
			Title:   r.Title(),
			Preview: resource.Preview(r),
			Size:    r.Size,
			HTML:    resource.RenderItem(r, ""),
		})
	}
	return searchResponse{Query: q, Start: start, Count: len(items), Items: items}
}
