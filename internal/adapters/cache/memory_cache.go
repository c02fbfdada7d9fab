package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/casey/mailsweep/internal/core"
)

// MemoryCache is an in-memory implementation of the MessageRepository
// interface, used in tests and for one-shot runs without a database file.
type MemoryCache struct {
	mu        sync.RWMutex
	messages  map[string]core.Message
	labels    []core.Label
	lastFetch time.Time
}

// NewMemoryCache creates an empty in-memory message cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{messages: make(map[string]core.Message)}
}

// SaveMessages upserts messages and stamps the fetch time.
func (c *MemoryCache) SaveMessages(_ context.Context, messages []core.Message) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range messages {
		c.messages[msg.MessageID] = msg
	}
	c.lastFetch = time.Now()
	return len(messages), nil
}

// Messages returns cached messages newest first, optionally limited to the
// last sinceDays days.
func (c *MemoryCache) Messages(_ context.Context, sinceDays int) ([]core.Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var cutoff time.Time
	if sinceDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -sinceDays)
	}

	var out []core.Message
	for _, msg := range c.messages {
		if sinceDays > 0 && msg.Date.Before(cutoff) {
			continue
		}
		out = append(out, msg)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Message returns a single cached message, or nil when absent.
func (c *MemoryCache) Message(_ context.Context, messageID string) (*core.Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	msg, ok := c.messages[messageID]
	if !ok {
		return nil, nil
	}
	return &msg, nil
}

// DeleteMessages removes messages from the cache.
func (c *MemoryCache) DeleteMessages(_ context.Context, messageIDs []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	deleted := 0
	for _, id := range messageIDs {
		if _, ok := c.messages[id]; ok {
			delete(c.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

// SaveLabels replaces the cached label set.
func (c *MemoryCache) SaveLabels(_ context.Context, labels []core.Label) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels = append([]core.Label(nil), labels...)
	sort.SliceStable(c.labels, func(i, j int) bool { return c.labels[i].Name < c.labels[j].Name })
	return nil
}

// Labels returns cached labels ordered by name.
func (c *MemoryCache) Labels(_ context.Context) ([]core.Label, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]core.Label(nil), c.labels...), nil
}

// LabelNameMap maps label IDs to display names.
func (c *MemoryCache) LabelNameMap(_ context.Context) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nameMap := make(map[string]string, len(c.labels))
	for _, label := range c.labels {
		nameMap[label.ID] = label.Name
	}
	return nameMap, nil
}

// IsFresh reports whether the last fetch happened within maxAge.
func (c *MemoryCache) IsFresh(_ context.Context, maxAge time.Duration) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastFetch.IsZero() {
		return false, nil
	}
	return time.Since(c.lastFetch) <= maxAge, nil
}

// MessageCount returns the number of cached messages.
func (c *MemoryCache) MessageCount(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages), nil
}

// ClearMessages drops all cached messages and the fetch timestamp.
func (c *MemoryCache) ClearMessages(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = make(map[string]core.Message)
	c.lastFetch = time.Time{}
	return nil
}

// ClearLabels drops all cached labels.
func (c *MemoryCache) ClearLabels(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels = nil
	return nil
}

// Close is a no-op for the in-memory cache.
func (c *MemoryCache) Close() error {
	return nil
}
