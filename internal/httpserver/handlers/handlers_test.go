package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bambuco/boa/internal/bank"
	"github.com/bambuco/boa/internal/catalogue"
	"github.com/bambuco/boa/internal/httpserver/deps"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/resource"
	"github.com/bambuco/boa/internal/search"
	"github.com/bambuco/boa/internal/sources/repositories"
)

func testDeps(bankURL string, client *http.Client) deps.Deps {
	cat := catalogue.New()
	if bankURL != "" {
		cat.Update([]repositories.Repository{
			{Name: "boa", URI: bankURL, Host: "bank.example"},
		}, nil)
	}
	return deps.Deps{
		Logger:          logger.Nop(),
		Catalogue:       cat,
		SearchCache:     search.NewCache(time.Minute, nil),
		SuggestionsSize: 10,
		ResultsSize:     10,
		MinLetters:      3,
		BankHTTP:        client,
		ProxyPrefix:     "/proxy/",
	}
}

func TestSuggestBelowMinLetters(t *testing.T) {
	d := testDeps("", nil)

	req := httptest.NewRequest(http.MethodGet, "/suggest?q=ag", nil)
	rec := httptest.NewRecorder()
	Suggest(d)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Suggestions []bank.Suggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Suggestions) != 0 {
		t.Errorf("short query must answer with an empty list, got %v", resp.Suggestions)
	}
}

func TestSuggestWithoutRepository(t *testing.T) {
	d := testDeps("", nil)

	req := httptest.NewRequest(http.MethodGet, "/suggest?q=agua", nil)
	rec := httptest.NewRecorder()
	Suggest(d)(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestSuggestSortsBySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]bank.Suggestion{
			{Query: "agua potable", Size: 3},
			{Query: "agua", Size: 20},
		})
	}))
	defer srv.Close()

	d := testDeps(srv.URL+"/c/boa/resources.json", srv.Client())
	req := httptest.NewRequest(http.MethodGet, "/suggest?q=agua", nil)
	rec := httptest.NewRecorder()
	Suggest(d)(rec, req)

	var resp struct {
		Suggestions []bank.Suggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Suggestions) != 2 || resp.Suggestions[0].Query != "agua" {
		t.Errorf("suggestions = %+v", resp.Suggestions)
	}
}

func TestSearchRejectsShortQuery(t *testing.T) {
	d := testDeps("", nil)

	req := httptest.NewRequest(http.MethodGet, "/search?q=ag", nil)
	rec := httptest.NewRecorder()
	Search(d)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSearchCachesPages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		res := resource.Resource{About: "http://bank.example/r/1", ID: "1", Size: 5}
		res.Metadata.General.Title = resource.Localized{"none": "Agua"}
		_ = json.NewEncoder(w).Encode([]resource.Resource{res})
	}))
	defer srv.Close()

	d := testDeps(srv.URL+"/c/boa/resources.json", srv.Client())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/search?q=agua", nil)
		rec := httptest.NewRecorder()
		Search(d)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Agua") {
			t.Fatalf("response missing rendered item: %s", rec.Body.String())
		}
	}

	if calls.Load() != 1 {
		t.Errorf("identical requests within the cache window should cost one bank call, got %d", calls.Load())
	}

	// A different offset is a different page, not a cache hit.
	req := httptest.NewRequest(http.MethodGet, "/search?q=agua&s=10", nil)
	rec := httptest.NewRecorder()
	Search(d)(rec, req)
	if calls.Load() != 2 {
		t.Errorf("new offset should reach the bank, calls = %d", calls.Load())
	}
}

func TestSearchBankErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"query not supported","info":"bad syntax"}}`))
	}))
	defer srv.Close()

	d := testDeps(srv.URL+"/c/boa/resources.json", srv.Client())
	req := httptest.NewRequest(http.MethodGet, "/search?q=agua", nil)
	rec := httptest.NewRecorder()
	Search(d)(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "query not supported") {
		t.Errorf("body should carry the bank message: %s", rec.Body.String())
	}
}

func TestSaveSelectionValidation(t *testing.T) {
	d := testDeps("", nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{`},
		{name: "missing cmid", body: `{"list":["http://bank.example/r/1"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/selection", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			SaveSelection(d)(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSelectionRequiresCmid(t *testing.T) {
	d := testDeps("", nil)

	for _, target := range []string{"/selection", "/selection?cmid=abc", "/selection?cmid=0"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		GetSelection(d)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestParseFilters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search?q=agua&f=format:video&f=format:audio&f=level:basic&f=bogus", nil)

	filters := parseFilters(req)
	if len(filters) != 2 {
		t.Fatalf("filters = %+v", filters)
	}
	if filters[0].Meta != "format" || len(filters[0].Values) != 2 {
		t.Errorf("filters[0] = %+v", filters[0])
	}
	if filters[1].Meta != "level" || filters[1].Values[0] != "basic" {
		t.Errorf("filters[1] = %+v", filters[1])
	}
}
