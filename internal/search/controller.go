package search

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bambuco/boa/internal/bank"
	"github.com/bambuco/boa/internal/logger"
	"github.com/bambuco/boa/internal/resource"
)

// Default controller tuning, matching the defaults the search widget ships
// with.
const (
	DefaultSuggestionsSize = 10
	DefaultResultsSize     = 10
	DefaultMinLetters      = 3
	DefaultCacheLife       = 60 * time.Second
)

// Options tunes a search controller.
type Options struct {
	SuggestionsSize int
	ResultsSize     int
	MinLetters      int
	CacheLife       time.Duration
	Filters         []bank.Filter

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o *Options) applyDefaults() {
	if o.SuggestionsSize <= 0 {
		o.SuggestionsSize = DefaultSuggestionsSize
	}
	if o.ResultsSize <= 0 {
		o.ResultsSize = DefaultResultsSize
	}
	if o.MinLetters <= 0 {
		o.MinLetters = DefaultMinLetters
	}
	if o.CacheLife <= 0 {
		o.CacheLife = DefaultCacheLife
	}
}

// Callbacks receive the controller's asynchronous outcomes. Nil callbacks
// are skipped. Transport failures and well-formed bank error payloads both
// route to OnError; nothing is thrown past this boundary.
type Callbacks struct {
	OnStart       func(more bool)
	OnFound       func(results []resource.Resource, start int)
	OnSuggestions func(items []bank.Suggestion)
	OnError       func(err error)
}

// Controller owns the typeahead search flow: suggestion requests with
// cancellation, the TTL'd query cache, and cumulative pagination.
type Controller struct {
	bank *bank.Client
	opts Options
	cb   Callbacks
	log  logger.Logger

	mu            sync.Mutex
	cache         *Cache
	box           *SuggestBox
	startRecord   int
	suggestSeq    uint64
	searchSeq     uint64
	suggestCancel context.CancelFunc
}

// NewController builds a controller around a bank client.
func NewController(client *bank.Client, opts Options, cb Callbacks, log logger.Logger) *Controller {
	opts.applyDefaults()
	return &Controller{
		bank:  client,
		opts:  opts,
		cb:    cb,
		log:   log,
		cache: NewCache(opts.CacheLife, opts.Now),
		box:   NewSuggestBox(),
	}
}

// Box exposes the suggestion panel state for keyboard navigation.
func (c *Controller) Box() *SuggestBox {
	return c.box
}

// Suggest fetches typeahead candidates for a partial query. Any in-flight
// suggestion request is cancelled first, so at most one is ever
// outstanding; a late completion from a superseded request never reaches
// the panel. Queries below the letter threshold just close the panel.
func (c *Controller) Suggest(ctx context.Context, q string) {
	c.mu.Lock()
	if c.suggestCancel != nil {
		c.suggestCancel()
		c.suggestCancel = nil
	}
	c.box.Reset()

	if utf8.RuneCountInString(q) < c.opts.MinLetters {
		c.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.suggestCancel = cancel
	c.suggestSeq++
	seq := c.suggestSeq
	c.mu.Unlock()

	items, err := c.bank.Suggest(ctx, q, c.opts.SuggestionsSize, c.opts.Filters)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.suggestSeq {
		// A newer suggestion request superseded this one.
		return
	}
	c.suggestCancel = nil

	if err != nil {
		// Suggestion failures are cosmetic; the panel just stays closed.
		c.log.Debug("suggestion request failed",
			logger.String("query", q),
			logger.Error(err))
		return
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Size > items[j].Size })
	c.box.Set(items)

	if c.cb.OnSuggestions != nil {
		c.cb.OnSuggestions(items)
	}
}

// Search runs the paged query for the current offset. Queries below the
// letter threshold are a silent no-op (returns false). A cache entry
// younger than the cache life short-circuits the remote call and replays
// the cached results.
func (c *Controller) Search(ctx context.Context, q string) bool {
	c.mu.Lock()

	if utf8.RuneCountInString(q) < c.opts.MinLetters {
		c.mu.Unlock()
		return false
	}

	start := c.startRecord
	key := q + "|" + strconv.Itoa(start)
	cached, hit := c.cache.Lookup(key)
	var seq uint64
	if !hit {
		c.cache.Begin(key)
		c.searchSeq++
		seq = c.searchSeq
	}
	c.mu.Unlock()

	c.notifyStart(start > 0)

	if hit {
		c.notifyFound(cached, start)
		return true
	}

	results, err := c.bank.Search(ctx, q, c.opts.ResultsSize, start, c.opts.Filters)

	c.mu.Lock()
	if seq != c.searchSeq {
		// Superseded by a newer search; drop this completion so stale
		// results never repopulate the view.
		c.mu.Unlock()
		return true
	}
	c.box.Reset()

	if err != nil {
		c.mu.Unlock()
		c.notifyError(err)

		var apiErr *bank.APIError
		if errors.As(err, &apiErr) {
			// A well-formed error payload still completes the search
			// with an empty result set.
			c.notifyFound(nil, start)
		}
		return true
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Size > results[j].Size })
	c.cache.Fill(key, results)
	c.mu.Unlock()

	c.notifyFound(results, start)
	return true
}

// SearchMore advances the offset by one page and re-runs the search,
// accumulating results instead of restarting the query.
func (c *Controller) SearchMore(ctx context.Context, q string) bool {
	c.mu.Lock()
	c.startRecord += c.opts.ResultsSize
	c.mu.Unlock()
	return c.Search(ctx, q)
}

// Restart resets pagination; the next search starts from record zero.
func (c *Controller) Restart() {
	c.mu.Lock()
	c.startRecord = 0
	c.mu.Unlock()
}

// Offset returns the current pagination offset.
func (c *Controller) Offset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startRecord
}

func (c *Controller) notifyStart(more bool) {
	if c.cb.OnStart != nil {
		c.cb.OnStart(more)
	}
}

func (c *Controller) notifyFound(results []resource.Resource, start int) {
	if c.cb.OnFound != nil {
		c.cb.OnFound(results, start)
	}
}

func (c *Controller) notifyError(err error) {
	if c.cb.OnError != nil {
		c.cb.OnError(err)
	} else {
		c.log.Warn("search failed", logger.Error(err))
	}
}
