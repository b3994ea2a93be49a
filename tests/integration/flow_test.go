package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bambuco/boa/internal/bank"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/player"
	"github.com/bambuco/boa/internal/resource"
	"github.com/bambuco/boa/internal/search"
	"github.com/bambuco/boa/internal/selection"
)

// memoryStore is an in-process stand-in for the Redis selection store.
type memoryStore struct {
	mu    sync.Mutex
	saved map[int][]string
}

func (s *memoryStore) SaveSelection(_ context.Context, cmid int, abouts []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[int][]string)
	}
	s.saved[cmid] = append([]string(nil), abouts...)
	return nil
}

func (s *memoryStore) GetSelection(_ context.Context, cmid int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.saved[cmid]...), nil
}

// newFakeBank serves the three endpoints the flow touches: typeahead
// candidates, paged search, and per-resource detail.
func newFakeBank(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/queries.json"):
			_ = json.NewEncoder(w).Encode([]bank.Suggestion{
				{Query: "agua potable", Size: 12},
				{Query: "agua", Size: 40},
			})

		case strings.HasSuffix(r.URL.Path, "/resources.json"):
			res := makeResource(srv.URL, "agua-ciclo")
			res.Size = 7
			_ = json.NewEncoder(w).Encode([]resource.Resource{*res})

		case strings.HasPrefix(r.URL.Path, "/c/boa/resources/"):
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/c/boa/resources/"), ".json")
			_ = json.NewEncoder(w).Encode(makeResource(srv.URL, id))

		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func makeResource(base, id string) *resource.Resource {
	r := &resource.Resource{
		About: base + "/c/boa/resources/" + id + ".json",
		ID:    base + "/c/boa/content/" + id,
	}
	r.Metadata.General.Title = resource.Localized{"none": "El ciclo del agua"}
	r.Metadata.Technical.Format = "video/mp4"
	r.Manifest.Entrypoint = "video.mp4"
	r.Manifest.Alternate = resource.AlternateList("video_small.mp4", "thumb.png")
	return r
}

// TestSearchSelectPlayFlow walks the whole path an instructor and then a
// learner take: typeahead, search, selection, save, and playback.
func TestSearchSelectPlayFlow(t *testing.T) {
	srv := newFakeBank(t)
	client := bank.New(srv.URL+"/c/boa/resources.json", srv.Client(), logger.Nop())
	ctx := context.Background()

	// Typeahead: suggestions arrive sorted by descending size.
	var gotSuggestions []bank.Suggestion
	var gotResults []resource.Resource
	ctrl := search.NewController(client, search.Options{}, search.Callbacks{
		OnSuggestions: func(items []bank.Suggestion) { gotSuggestions = items },
		OnFound:       func(results []resource.Resource, start int) { gotResults = results },
	}, logger.Nop())

	ctrl.Suggest(ctx, "agua")
	if len(gotSuggestions) != 2 || gotSuggestions[0].Query != "agua" {
		t.Fatalf("suggestions = %+v", gotSuggestions)
	}

	// Accepting the top suggestion runs the search.
	ctrl.Box().Next()
	accepted, ok := ctrl.Box().Accept()
	if !ok {
		t.Fatal("suggestion should be accepted")
	}
	if !ctrl.Search(ctx, accepted) {
		t.Fatal("search should run for an accepted suggestion")
	}
	if len(gotResults) != 1 {
		t.Fatalf("results = %+v", gotResults)
	}
	found := gotResults[0]

	// The instructor picks the result and saves the selection.
	store := &memoryStore{}
	mgr := selection.NewManager(7, client, store, logger.Nop())
	if added := mgr.Toggle(found.About, &found); !added {
		t.Fatal("toggle should add the resource")
	}
	if err := mgr.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The learner's playlist loads from the persisted selection.
	abouts, err := store.GetSelection(ctx, 7)
	if err != nil || len(abouts) != 1 {
		t.Fatalf("persisted selection = %v, %v", abouts, err)
	}

	pl := player.NewPlayer(client, resource.ResolveOptions{}, logger.Nop())
	pl.Load(ctx, abouts)

	pane, ok := pl.Active()
	if !ok {
		t.Fatal("first playable resource should auto-activate")
	}
	if !strings.Contains(pane.Embed.Markup, "video_small.mp4") {
		t.Errorf("pane should play the small rendition, markup = %q", pane.Embed.Markup)
	}
	if !strings.Contains(pane.Title, "ciclo del agua") {
		t.Errorf("pane title = %q", pane.Title)
	}
}
