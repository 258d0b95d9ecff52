package browser

import (
	"strings"
	"sync"
)

// collector records distinct matching URLs observed on the network.
// The notify channel is closed on the first match.
type collector struct {
	pattern string

	mu     sync.Mutex
	urls   []string
	seen   map[string]struct{}
	notify chan struct{}
}

func newCollector(pattern string) *collector {
	return &collector{
		pattern: pattern,
		seen:    make(map[string]struct{}),
		notify:  make(chan struct{}),
	}
}

// Add records u if it matches the pattern and was not seen before.
func (c *collector) Add(u string) {
	if !c.matches(u) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[u]; ok {
		return
	}
	c.seen[u] = struct{}{}
	c.urls = append(c.urls, u)

	if len(c.urls) == 1 {
		close(c.notify)
	}
}

func (c *collector) matches(u string) bool {
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return false
	}
	return strings.Contains(u, c.pattern)
}

// Found is closed once the first URL is recorded.
func (c *collector) Found() <-chan struct{} {
	return c.notify
}

// URLs returns a copy of the recorded URLs in discovery order.
func (c *collector) URLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.urls) == 0 {
		return nil
	}
	out := make([]string, len(c.urls))
	copy(out, c.urls)
	return out
}
