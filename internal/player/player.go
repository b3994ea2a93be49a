package player

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/resource"
)

// Fetcher loads the full resource behind an about URI.
type Fetcher interface {
	Fetch(ctx context.Context, about string) (*resource.Resource, error)
}

// Entry is one navigation slot in a playlist. Resource stays nil when the
// fetch failed; the slot is still listed so the learner sees what was
// assigned even if it cannot be played.
type Entry struct {
	About    string
	Resource *resource.Resource
}

// Pane is the rendered view of one resource. At most one pane is visible
// at a time.
type Pane struct {
	ID       string
	Title    string
	Embed    resource.Embed
	FinalURI string
}

// Player drives the learner-facing playlist for a course module: it loads
// the assigned resources, keeps a per-resource pane cache and enforces
// that exactly one pane is showing.
type Player struct {
	fetch Fetcher
	opts  resource.ResolveOptions
	log   logger.Logger

	mu      sync.Mutex
	entries []Entry
	panes   map[string]*Pane
	active  string
}

// NewPlayer creates an empty player.
func NewPlayer(fetch Fetcher, opts resource.ResolveOptions, log logger.Logger) *Player {
	return &Player{
		fetch: fetch,
		opts:  opts,
		log:   log,
		panes: make(map[string]*Pane),
	}
}

// Load fetches every assigned resource concurrently, keeping playlist
// order. Fetches proceed independently; a failed slot is logged and left
// empty. The first resource that resolves to playable markup is activated
// so the learner never faces a blank stage.
func (p *Player) Load(ctx context.Context, abouts []string) {
	entries := make([]Entry, len(abouts))

	var g errgroup.Group
	for i, about := range abouts {
		i, about := i, about
		entries[i].About = about
		g.Go(func() error {
			res, err := p.fetch.Fetch(ctx, about)
			if err != nil {
				p.log.Warn("failed to load playlist resource",
					logger.String("about", about),
					logger.Error(err))
				return nil
			}
			entries[i].Resource = res
			return nil
		})
	}
	_ = g.Wait()

	p.mu.Lock()
	p.entries = entries
	p.panes = make(map[string]*Pane)
	p.active = ""
	p.mu.Unlock()

	for _, e := range entries {
		if e.Resource == nil {
			continue
		}
		if _, err := p.Activate(e.Resource.ID); err == nil {
			return
		}
	}
}

// Entries returns the playlist in assignment order.
func (p *Player) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Entry(nil), p.entries...)
}

// Activate makes the pane for a resource id the visible one, building and
// caching it on first use. Re-activating the current pane is a no-op.
func (p *Player) Activate(id string) (*Pane, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pane, ok := p.panes[id]; ok {
		p.active = id
		return pane, nil
	}

	res := p.findLocked(id)
	if res == nil {
		return nil, fmt.Errorf("no loaded resource with id %q", id)
	}

	embed := resource.Resolve(res, p.opts)
	if embed.Markup == "" {
		return nil, fmt.Errorf("resource %q has no playable representation", id)
	}

	pane := &Pane{
		ID:       id,
		Title:    res.Title(),
		Embed:    embed,
		FinalURI: resource.FinalURI(res),
	}
	p.panes[id] = pane
	p.active = id
	return pane, nil
}

// Active returns the visible pane, if any.
func (p *Player) Active() (*Pane, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pane, ok := p.panes[p.active]
	return pane, ok
}

func (p *Player) findLocked(id string) *resource.Resource {
	for _, e := range p.entries {
		if e.Resource != nil && e.Resource.ID == id {
			return e.Resource
		}
	}
	return nil
}
