package search

import (
	"testing"
	"time"

	"github.com/bambuco/boa/internal/resource"
)

func TestCacheFreshness(t *testing.T) {
	now := time.Now()
	c := NewCache(time.Minute, func() time.Time { return now })

	c.Begin("agua")
	c.Fill("agua", []resource.Resource{{About: "a"}})

	if got, ok := c.Lookup("agua"); !ok || len(got) != 1 {
		t.Fatalf("fresh entry should hit, got %v %v", got, ok)
	}

	now = now.Add(time.Minute)
	if _, ok := c.Lookup("agua"); ok {
		t.Error("entry at exactly cacheLife must be stale")
	}
}

func TestCacheEntryPerQuery(t *testing.T) {
	c := NewCache(time.Minute, nil)

	c.Begin("agua")
	c.Fill("agua", []resource.Resource{{About: "a"}})

	if _, ok := c.Lookup("tierra"); ok {
		t.Error("cache keyed by exact query string")
	}
}

func TestCacheFillWithoutBeginIsNoOp(t *testing.T) {
	c := NewCache(time.Minute, nil)
	c.Fill("agua", []resource.Resource{{About: "a"}})

	if _, ok := c.Lookup("agua"); ok {
		t.Error("fill without begin should not create an entry")
	}
}
