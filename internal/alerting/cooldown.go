package alerting

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CooldownTracker keeps last-action timestamps for alert creation (per rule
// and dedup key) and delivery (per channel and rule). Entries are never
// proactively expired: the key space is bounded by configuration (rules and
// channels), not by event volume.
type CooldownTracker struct {
	creations  *gocache.Cache
	deliveries *gocache.Cache
}

// NewCooldownTracker creates an empty tracker.
func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		creations:  gocache.New(gocache.NoExpiration, 0),
		deliveries: gocache.New(gocache.NoExpiration, 0),
	}
}

func creationKey(ruleName, dedupKey string) string {
	return ruleName + "\x00" + dedupKey
}

func deliveryKey(channelName, ruleName string) string {
	return channelName + "\x00" + ruleName
}

// ShouldSuppressCreation reports whether an alert creation for the given
// rule and dedup key falls inside the cooldown window ending at now.
func (t *CooldownTracker) ShouldSuppressCreation(ruleName, dedupKey string, cooldown time.Duration, now time.Time) bool {
	return t.suppressed(t.creations, creationKey(ruleName, dedupKey), cooldown, now)
}

// RecordCreation stores the creation timestamp. Call only after the alert
// was actually created, never speculatively.
func (t *CooldownTracker) RecordCreation(ruleName, dedupKey string, now time.Time) {
	t.record(t.creations, creationKey(ruleName, dedupKey), now)
}

// ShouldSuppressDelivery reports whether a delivery on the channel for the
// rule falls inside the channel's rate-limit window ending at now.
func (t *CooldownTracker) ShouldSuppressDelivery(channelName, ruleName string, rateLimit time.Duration, now time.Time) bool {
	return t.suppressed(t.deliveries, deliveryKey(channelName, ruleName), rateLimit, now)
}

// RecordDelivery stores the delivery timestamp. Call only after the send
// actually succeeded.
func (t *CooldownTracker) RecordDelivery(channelName, ruleName string, now time.Time) {
	t.record(t.deliveries, deliveryKey(channelName, ruleName), now)
}

func (t *CooldownTracker) suppressed(c *gocache.Cache, key string, window time.Duration, now time.Time) bool {
	if window <= 0 {
		return false
	}
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	last := v.(time.Time)
	return now.Sub(last) < window
}

// record keeps timestamps monotonically non-decreasing per key.
func (t *CooldownTracker) record(c *gocache.Cache, key string, now time.Time) {
	if v, ok := c.Get(key); ok {
		if last := v.(time.Time); last.After(now) {
			return
		}
	}
	c.Set(key, now, gocache.NoExpiration)
}
