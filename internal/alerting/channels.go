package alerting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// defaultChannelTimeout bounds one adapter invocation so a slow channel
// cannot stall the dispatcher for its siblings or the next tick.
const defaultChannelTimeout = 30 * time.Second

// ChannelAdapter delivers one rendered payload to one medium. Adapters are
// stateless except for their own connection handling; rate-limit bookkeeping
// lives in the cooldown tracker.
type ChannelAdapter interface {
	Name() string
	Send(ctx context.Context, payload *Payload) error
}

// Channel pairs an adapter with its delivery policy.
type Channel struct {
	Name         string
	Enabled      bool
	RateLimitSec int
	Timeout      time.Duration
	Adapter      ChannelAdapter
}

// RateLimit returns the per-rule delivery spacing for this channel.
func (c *Channel) RateLimit() time.Duration {
	return time.Duration(c.RateLimitSec) * time.Second
}

// timeout returns the adapter invocation bound, defaulting when unset.
func (c *Channel) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultChannelTimeout
}

// ChannelSet holds the live channels by name. Adding a channel whose name
// already exists replaces it.
type ChannelSet struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

// NewChannelSet creates an empty channel set.
func NewChannelSet() *ChannelSet {
	return &ChannelSet{channels: make(map[string]*Channel)}
}

// Add validates structurally and inserts or replaces the channel.
func (cs *ChannelSet) Add(ch Channel) error {
	if ch.Name == "" {
		return fmt.Errorf("channel name is required")
	}
	if ch.Adapter == nil {
		return fmt.Errorf("channel %q: adapter is required", ch.Name)
	}
	if ch.RateLimitSec < 0 {
		return fmt.Errorf("channel %q: rate limit must not be negative", ch.Name)
	}
	stored := ch
	cs.mu.Lock()
	cs.channels[ch.Name] = &stored
	cs.mu.Unlock()
	return nil
}

// Get returns a copy of the named channel.
func (cs *ChannelSet) Get(name string) (Channel, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	ch, ok := cs.channels[name]
	if !ok {
		return Channel{}, false
	}
	return *ch, true
}

// SetEnabled toggles a channel. Returns false for unknown names.
func (cs *ChannelSet) SetEnabled(name string, enabled bool) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	ch, ok := cs.channels[name]
	if !ok {
		return false
	}
	ch.Enabled = enabled
	return true
}

// List returns copies of all channels sorted by name.
func (cs *ChannelSet) List() []Channel {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]Channel, 0, len(cs.channels))
	for _, ch := range cs.channels {
		out = append(out, *ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EnabledNames returns the names of all enabled channels, sorted.
func (cs *ChannelSet) EnabledNames() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]string, 0, len(cs.channels))
	for name, ch := range cs.channels {
		if ch.Enabled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Counts returns total and enabled channel counts.
func (cs *ChannelSet) Counts() (total, enabled int) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	total = len(cs.channels)
	for _, ch := range cs.channels {
		if ch.Enabled {
			enabled++
		}
	}
	return total, enabled
}
