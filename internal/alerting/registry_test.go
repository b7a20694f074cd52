package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddReplaceRemove(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rule := testRule("highCPU")
	require.NoError(t, reg.AddRule(rule))

	got, ok := reg.GetRule("highCPU")
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, got.Severity)

	// Replacement by name.
	rule.Severity = SeverityCritical
	require.NoError(t, reg.AddRule(rule))
	got, _ = reg.GetRule("highCPU")
	assert.Equal(t, SeverityCritical, got.Severity)

	total, _ := reg.Counts()
	assert.Equal(t, 1, total)

	assert.True(t, reg.RemoveRule("highCPU"))
	assert.False(t, reg.RemoveRule("highCPU"))
	_, ok = reg.GetRule("highCPU")
	assert.False(t, ok)
}

func TestRegistryValidation(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	nameless := testRule("")
	assert.Error(t, reg.AddRule(nameless))

	negative := testRule("bad")
	negative.CooldownSec = -1
	assert.Error(t, reg.AddRule(negative))

	negative = testRule("bad")
	negative.EscalationSec = -1
	assert.Error(t, reg.AddRule(negative))
}

func TestRegistryListFilters(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	cpu := testRule("highCPU")
	cpu.Tags = []string{"infra"}
	db := NewRule("databaseDown", TypeDatabase, SeverityCritical,
		Condition{Kind: CompareIsFalse, Key: KeyDatabaseConnected})
	disabled := testRule("zDisabled")
	disabled.Enabled = false
	require.NoError(t, reg.AddRule(cpu))
	require.NoError(t, reg.AddRule(db))
	require.NoError(t, reg.AddRule(disabled))

	all := reg.ListRules(RuleFilter{})
	require.Len(t, all, 3)
	// Sorted by name.
	assert.Equal(t, "databaseDown", all[0].Name)
	assert.Equal(t, "zDisabled", all[2].Name)

	byType := reg.ListRules(RuleFilter{Type: TypeDatabase})
	require.Len(t, byType, 1)
	assert.Equal(t, "databaseDown", byType[0].Name)

	enabled := true
	assert.Len(t, reg.ListRules(RuleFilter{Enabled: &enabled}), 2)
	disabledOnly := false
	assert.Len(t, reg.ListRules(RuleFilter{Enabled: &disabledOnly}), 1)

	byTag := reg.ListRules(RuleFilter{Tag: "infra"})
	require.Len(t, byTag, 1)
	assert.Equal(t, "highCPU", byTag[0].Name)

	assert.Len(t, reg.EnabledRules(), 2)
}

func TestRegistrySetEnabled(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.AddRule(testRule("highCPU")))

	require.True(t, reg.SetEnabled("highCPU", false))
	got, _ := reg.GetRule("highCPU")
	assert.False(t, got.Enabled)

	assert.False(t, reg.SetEnabled("missing", true))

	_, enabled := reg.Counts()
	assert.Zero(t, enabled)
}

func TestRegistryReturnsCopies(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rule := testRule("highCPU")
	rule.Channels = []string{"log"}
	require.NoError(t, reg.AddRule(rule))

	got, _ := reg.GetRule("highCPU")
	got.Channels[0] = "mutated"

	fresh, _ := reg.GetRule("highCPU")
	assert.Equal(t, "log", fresh.Channels[0])
}

func TestDefaultRulesAreValid(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	rules := DefaultRules()
	require.NotEmpty(t, rules)
	for _, r := range rules {
		require.NoError(t, reg.AddRule(r), "default rule %s must validate", r.Name)
		assert.True(t, KnownComparator(r.Condition.Kind), "default rule %s comparator", r.Name)
		assert.True(t, r.Enabled)
		assert.NotEmpty(t, r.Channels)
	}
}

func TestChannelSetBasics(t *testing.T) {
	t.Parallel()

	set := NewChannelSet()
	assert.Error(t, set.Add(Channel{Name: "", Adapter: &recordingAdapter{}}))
	assert.Error(t, set.Add(Channel{Name: "log"}))

	require.NoError(t, set.Add(Channel{Name: "log", Enabled: true, Adapter: &recordingAdapter{name: "log"}}))
	require.NoError(t, set.Add(Channel{Name: "slack", Enabled: false, Adapter: &recordingAdapter{name: "slack"}}))

	ch, ok := set.Get("log")
	require.True(t, ok)
	assert.True(t, ch.Enabled)
	_, ok = set.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"log"}, set.EnabledNames())

	require.True(t, set.SetEnabled("slack", true))
	assert.False(t, set.SetEnabled("missing", true))
	total, enabled := set.Counts()
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, enabled)
	assert.Len(t, set.List(), 2)
}
