package selection

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/resource"
)

// Fetcher loads the full resource behind an about URI.
type Fetcher interface {
	Fetch(ctx context.Context, about string) (*resource.Resource, error)
}

// Persister stores the curated selection for a course module.
type Persister interface {
	SaveSelection(ctx context.Context, cmid int, abouts []string) error
	GetSelection(ctx context.Context, cmid int) ([]string, error)
}

// Item is one selection entry. Resource is nil while the entry is known
// but not yet fetched.
type Item struct {
	About    string
	Resource *resource.Resource
}

// Manager maintains the set of resources an instructor has chosen for a
// course module. Membership is keyed by about URI and unique regardless of
// how many times an entry is added. The selection is flushed to persistent
// storage only by an explicit Save, never incrementally.
type Manager struct {
	cmid  int
	fetch Fetcher
	store Persister
	log   logger.Logger

	mu    sync.Mutex
	order []string
	items map[string]*resource.Resource
}

// NewManager creates an empty selection for a course module.
func NewManager(cmid int, fetch Fetcher, store Persister, log logger.Logger) *Manager {
	return &Manager{
		cmid:  cmid,
		fetch: fetch,
		store: store,
		log:   log,
		items: make(map[string]*resource.Resource),
	}
}

// Seed loads the persisted selection. Every entry starts with a nil
// payload; Refresh populates them on demand.
func (m *Manager) Seed(ctx context.Context) error {
	abouts, err := m.store.GetSelection(ctx, m.cmid)
	if err != nil {
		return err
	}
	m.SeedURIs(abouts)
	return nil
}

// SeedURIs registers known about URIs with unfetched payloads. Duplicates
// are ignored.
func (m *Manager) SeedURIs(abouts []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, about := range abouts {
		if _, ok := m.items[about]; ok {
			continue
		}
		m.order = append(m.order, about)
		m.items[about] = nil
	}
}

// Toggle flips an entry's membership. Adding stores the currently known
// payload (possibly nil); removing drops the entry and whatever detail
// was attached to it. Returns true when the entry was added.
func (m *Manager) Toggle(about string, res *resource.Resource) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[about]; ok {
		delete(m.items, about)
		for i, a := range m.order {
			if a == about {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
		return false
	}

	m.order = append(m.order, about)
	m.items[about] = res
	return true
}

// Has reports whether an about URI is currently selected.
func (m *Manager) Has(about string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[about]
	return ok
}

// Len returns the number of selected entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Items returns the selection in insertion order.
func (m *Manager) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]Item, 0, len(m.order))
	for _, about := range m.order {
		items = append(items, Item{About: about, Resource: m.items[about]})
	}
	return items
}

// Abouts returns the selected URI set in insertion order, regardless of
// payload state.
func (m *Manager) Abouts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Refresh fetches every entry that still has a nil payload. Fetches for
// distinct entries proceed independently; each one writes only its own
// slot, and a failed fetch leaves its entry unfetched for the next
// refresh.
func (m *Manager) Refresh(ctx context.Context) {
	m.mu.Lock()
	var pending []string
	for _, about := range m.order {
		if m.items[about] == nil {
			pending = append(pending, about)
		}
	}
	m.mu.Unlock()

	var g errgroup.Group
	for _, about := range pending {
		about := about
		g.Go(func() error {
			res, err := m.fetch.Fetch(ctx, about)
			if err != nil {
				m.log.Warn("failed to load selected resource",
					logger.String("about", about),
					logger.Error(err))
				return nil
			}

			m.mu.Lock()
			// Bind only if the entry still exists and was not filled
			// by a concurrent refresh.
			if cur, ok := m.items[about]; ok && cur == nil {
				m.items[about] = res
			}
			m.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

// Save persists the full current key set in one remote call with
// full-replace semantics. This is the only path that persists selection
// state; on failure the in-memory selection is retained so the caller can
// retry.
func (m *Manager) Save(ctx context.Context) error {
	return m.store.SaveSelection(ctx, m.cmid, m.Abouts())
}
