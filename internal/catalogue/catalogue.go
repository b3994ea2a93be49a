package catalogue

import (
	"sync"
	"time"

	"github.com/bambuco/boa/internal/resource"
	"github.com/bambuco/boa/internal/sources/repositories"
)

// Catalogue provides in-memory storage for the configured object banks
// and share networks. It is rebuilt atomically on every repositories
// reload so request handlers always see a consistent view.
type Catalogue struct {
	mu         sync.RWMutex
	repos      []repositories.Repository
	networks   []resource.Network
	hosts      []string
	lastReload time.Time
}

// New creates an empty catalogue
func New() *Catalogue {
	return &Catalogue{}
}

// Update replaces all repositories and networks in the catalogue
func (c *Catalogue) Update(repos []repositories.Repository, networks []resource.Network) {
	hosts := repositories.Hosts(repos)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.repos = repos
	c.networks = networks
	c.hosts = hosts
	c.lastReload = time.Now()
}

// Primary returns the bank that serves search and fetch traffic. Only
// the first configured repository is queried; the others are listed for
// the proxy allow-list.
func (c *Catalogue) Primary() (repositories.Repository, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.repos) == 0 {
		return repositories.Repository{}, false
	}
	return c.repos[0], true
}

// All returns every configured repository
func (c *Catalogue) All() []repositories.Repository {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]repositories.Repository(nil), c.repos...)
}

// Networks returns the configured share-link templates
func (c *Catalogue) Networks() []resource.Network {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]resource.Network(nil), c.networks...)
}

// Hosts returns the hostnames the content proxy may reach
func (c *Catalogue) Hosts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.hosts...)
}

// Count returns the number of configured repositories
func (c *Catalogue) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.repos)
}

// GetLastReload returns the timestamp of the last repositories reload
func (c *Catalogue) GetLastReload() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastReload
}
