package selection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/resource"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, about string) (*resource.Resource, error) {
	f.mu.Lock()
	f.calls = append(f.calls, about)
	f.mu.Unlock()

	if f.fail[about] {
		return nil, errors.New("bank unavailable")
	}
	return &resource.Resource{About: about, ID: about}, nil
}

type fakeStore struct {
	saved  map[int][]string
	seeded []string
	err    error
}

func (s *fakeStore) SaveSelection(_ context.Context, cmid int, abouts []string) error {
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = make(map[int][]string)
	}
	s.saved[cmid] = append([]string(nil), abouts...)
	return nil
}

func (s *fakeStore) GetSelection(_ context.Context, _ int) ([]string, error) {
	return s.seeded, s.err
}

func newManager(t *testing.T, store *fakeStore, fetch *fakeFetcher) *Manager {
	t.Helper()
	if store == nil {
		store = &fakeStore{}
	}
	if fetch == nil {
		fetch = &fakeFetcher{}
	}
	return NewManager(42, fetch, store, logger.Nop())
}

func TestToggleMembership(t *testing.T) {
	m := newManager(t, nil, nil)

	if added := m.Toggle("http://bank/a", nil); !added {
		t.Fatal("first toggle should add")
	}
	if !m.Has("http://bank/a") {
		t.Fatal("entry should be selected after add")
	}

	if added := m.Toggle("http://bank/a", nil); added {
		t.Fatal("second toggle should remove")
	}
	if m.Has("http://bank/a") {
		t.Fatal("entry should be gone after second toggle")
	}
}

func TestItemsKeepInsertionOrder(t *testing.T) {
	m := newManager(t, nil, nil)
	m.Toggle("http://bank/b", nil)
	m.Toggle("http://bank/a", &resource.Resource{About: "http://bank/a"})
	m.Toggle("http://bank/c", nil)
	m.Toggle("http://bank/b", nil) // remove
	m.Toggle("http://bank/b", nil) // re-add at the end

	got := m.Abouts()
	want := []string{"http://bank/a", "http://bank/c", "http://bank/b"}
	if len(got) != len(want) {
		t.Fatalf("Abouts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Abouts()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRefreshFetchesOnlyUnfetched(t *testing.T) {
	fetch := &fakeFetcher{}
	m := newManager(t, nil, fetch)
	m.Toggle("http://bank/a", &resource.Resource{About: "http://bank/a"})
	m.Toggle("http://bank/b", nil)

	m.Refresh(context.Background())

	if len(fetch.calls) != 1 || fetch.calls[0] != "http://bank/b" {
		t.Fatalf("expected a single fetch for the nil entry, got %v", fetch.calls)
	}
	for _, it := range m.Items() {
		if it.Resource == nil {
			t.Errorf("entry %q still unfetched after refresh", it.About)
		}
	}

	// A second refresh has nothing left to do.
	m.Refresh(context.Background())
	if len(fetch.calls) != 1 {
		t.Errorf("filled entries must not be fetched again, calls %v", fetch.calls)
	}
}

func TestRefreshFailureLeavesEntryRetryable(t *testing.T) {
	fetch := &fakeFetcher{fail: map[string]bool{"http://bank/bad": true}}
	m := newManager(t, nil, fetch)
	m.Toggle("http://bank/bad", nil)
	m.Toggle("http://bank/ok", nil)

	m.Refresh(context.Background())

	if !m.Has("http://bank/bad") {
		t.Fatal("failed entry must stay selected")
	}
	var bad, ok *resource.Resource
	for _, it := range m.Items() {
		switch it.About {
		case "http://bank/bad":
			bad = it.Resource
		case "http://bank/ok":
			ok = it.Resource
		}
	}
	if bad != nil {
		t.Error("failed entry should remain unfetched")
	}
	if ok == nil {
		t.Error("the other entry must be filled despite the failure")
	}

	// The failed slot is retried next time.
	fetch.fail = nil
	m.Refresh(context.Background())
	for _, it := range m.Items() {
		if it.About == "http://bank/bad" && it.Resource == nil {
			t.Error("entry should be filled once the fetch recovers")
		}
	}
}

func TestSeedFromStore(t *testing.T) {
	store := &fakeStore{seeded: []string{"http://bank/a", "http://bank/b", "http://bank/a"}}
	m := newManager(t, store, nil)

	if err := m.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("duplicates must collapse, Len() = %d", m.Len())
	}
	for _, it := range m.Items() {
		if it.Resource != nil {
			t.Errorf("seeded entry %q should start unfetched", it.About)
		}
	}
}

func TestSavePersistsFullKeySet(t *testing.T) {
	store := &fakeStore{}
	m := newManager(t, store, nil)
	m.Toggle("http://bank/a", nil)
	m.Toggle("http://bank/b", nil)

	if err := m.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := store.saved[42]; len(got) != 2 {
		t.Fatalf("saved abouts = %v", got)
	}

	// Removals are reflected on the next save, not before.
	m.Toggle("http://bank/a", nil)
	if err := m.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if got := store.saved[42]; len(got) != 1 || got[0] != "http://bank/b" {
		t.Fatalf("saved abouts after removal = %v", got)
	}
}

func TestSaveFailureKeepsSelection(t *testing.T) {
	store := &fakeStore{err: errors.New("redis down")}
	m := newManager(t, store, nil)
	m.Toggle("http://bank/a", nil)

	if err := m.Save(context.Background()); err == nil {
		t.Fatal("Save() should surface the store error")
	}
	if !m.Has("http://bank/a") {
		t.Error("selection must survive a failed save")
	}
}
