package alerting

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type escalationFixture struct {
	store     *Store
	registry  *Registry
	channels  *ChannelSet
	escalator *Escalator
	adapters  map[string]*recordingAdapter
}

func newEscalationFixture(t *testing.T, channelNames ...string) *escalationFixture {
	t.Helper()
	log := testLogger()
	cooldowns := NewCooldownTracker()
	store := NewStore(10, cooldowns)
	registry := NewRegistry()
	channels := NewChannelSet()
	adapters := make(map[string]*recordingAdapter)
	for _, name := range channelNames {
		a := &recordingAdapter{name: name}
		adapters[name] = a
		require.NoError(t, channels.Add(Channel{Name: name, Enabled: true, Adapter: a}))
	}
	dispatcher := NewDispatcher(channels, cooldowns, log)
	return &escalationFixture{
		store:     store,
		registry:  registry,
		channels:  channels,
		escalator: NewEscalator(store, registry, dispatcher, log),
		adapters:  adapters,
	}
}

func (f *escalationFixture) fire(t *testing.T, rule AlertRule, at time.Time) *Alert {
	t.Helper()
	require.NoError(t, f.registry.AddRule(rule))
	alert := f.store.Create(&rule, matchedResult("test alert"), Snapshot{}, at)
	require.NotNil(t, alert)
	return alert
}

func TestEscalationAfterTimeout(t *testing.T) {
	t.Parallel()

	f := newEscalationFixture(t, "log")
	rule := testRule("highCPU")
	rule.EscalationSec = 1800
	base := time.Now()
	alert := f.fire(t, rule, base)

	// Before the timeout nothing happens.
	assert.Empty(t, f.escalator.CheckEscalations(context.Background(), base.Add(1799*time.Second)))

	escalated := f.escalator.CheckEscalations(context.Background(), base.Add(1800*time.Second))
	require.Len(t, escalated, 1)
	assert.Equal(t, alert.ID, escalated[0].ID)
	assert.Equal(t, StatusEscalated, escalated[0].Status)
	assert.Equal(t, SeverityCritical, escalated[0].Severity)
	require.NotNil(t, escalated[0].EscalatedAt)
}

func TestEscalationIsOneShot(t *testing.T) {
	t.Parallel()

	f := newEscalationFixture(t, "log")
	rule := testRule("highCPU")
	rule.EscalationSec = 60
	base := time.Now()
	f.fire(t, rule, base)

	require.Len(t, f.escalator.CheckEscalations(context.Background(), base.Add(time.Hour)), 1)
	assert.Empty(t, f.escalator.CheckEscalations(context.Background(), base.Add(2*time.Hour)))
	assert.Equal(t, 1, f.adapters["log"].sent())
}

func TestEscalationZeroTimeoutDisables(t *testing.T) {
	t.Parallel()

	f := newEscalationFixture(t, "log")
	rule := testRule("highCPU")
	rule.EscalationSec = 0
	base := time.Now()
	f.fire(t, rule, base)

	assert.Empty(t, f.escalator.CheckEscalations(context.Background(), base.Add(24*time.Hour)))
	assert.Zero(t, f.adapters["log"].sent())
}

func TestEscalationSkipsRemovedRule(t *testing.T) {
	t.Parallel()

	f := newEscalationFixture(t, "log")
	rule := testRule("highCPU")
	rule.EscalationSec = 60
	base := time.Now()
	f.fire(t, rule, base)
	require.True(t, f.registry.RemoveRule("highCPU"))

	assert.Empty(t, f.escalator.CheckEscalations(context.Background(), base.Add(time.Hour)))
}

func TestEscalationBroadcastsToAllEnabledChannels(t *testing.T) {
	t.Parallel()

	f := newEscalationFixture(t, "log", "slack", "email")
	require.True(t, f.channels.SetEnabled("email", false))

	rule := testRule("highCPU")
	rule.EscalationSec = 60
	// The rule itself only targets "log"; escalation widens to everything
	// currently enabled.
	rule.Channels = []string{"log"}
	base := time.Now()
	f.fire(t, rule, base)

	require.Len(t, f.escalator.CheckEscalations(context.Background(), base.Add(time.Hour)), 1)
	assert.Equal(t, 1, f.adapters["log"].sent())
	assert.Equal(t, 1, f.adapters["slack"].sent())
	assert.Zero(t, f.adapters["email"].sent())
}

func TestEscalationPayloadMarksTitle(t *testing.T) {
	t.Parallel()

	f := newEscalationFixture(t, "log")
	rule := testRule("highCPU")
	rule.EscalationSec = 60
	base := time.Now()
	f.fire(t, rule, base)

	require.Len(t, f.escalator.CheckEscalations(context.Background(), base.Add(time.Hour)), 1)

	adapter := f.adapters["log"]
	adapter.mu.Lock()
	defer adapter.mu.Unlock()
	require.Len(t, adapter.payloads, 1)
	p := adapter.payloads[0]
	assert.True(t, strings.HasPrefix(p.Title, "[ESCALATED] "))
	assert.Equal(t, SeverityCritical, p.Severity)
	assert.Equal(t, StatusEscalated, p.Status)
}

func TestEscalationAppliesToAcknowledgedAlerts(t *testing.T) {
	t.Parallel()

	f := newEscalationFixture(t, "log")
	rule := testRule("highCPU")
	rule.EscalationSec = 60
	base := time.Now()
	alert := f.fire(t, rule, base)
	require.True(t, f.store.Acknowledge(alert.ID, "ops", base.Add(time.Second)))

	escalated := f.escalator.CheckEscalations(context.Background(), base.Add(time.Hour))
	require.Len(t, escalated, 1)
	assert.Equal(t, StatusEscalated, escalated[0].Status)
}

func TestEscalationSkipsResolvedAlerts(t *testing.T) {
	t.Parallel()

	f := newEscalationFixture(t, "log")
	rule := testRule("highCPU")
	rule.EscalationSec = 60
	base := time.Now()
	alert := f.fire(t, rule, base)
	require.True(t, f.store.Resolve(alert.ID, base.Add(time.Second)))

	assert.Empty(t, f.escalator.CheckEscalations(context.Background(), base.Add(time.Hour)))
}
