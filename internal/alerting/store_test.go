package alerting

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRule(name string) AlertRule {
	return NewRule(name, TypePerformance, SeverityWarning,
		Condition{Kind: CompareGreaterThan, Key: KeyCPUPercent, Threshold: 90})
}

func matchedResult(title string) EvaluationResult {
	return EvaluationResult{Matched: true, Title: title, Description: "test description"}
}

func TestStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	now := time.Now()

	alert := store.Create(&rule, matchedResult("CPU high"), Snapshot{KeyCPUPercent: 95.0}, now)
	require.NotNil(t, alert)
	assert.Equal(t, "highCPU", alert.RuleName)
	assert.Equal(t, StatusActive, alert.Status)
	assert.Equal(t, SeverityWarning, alert.Severity)
	assert.Contains(t, alert.ID, "highCPU-")

	got, ok := store.Get(alert.ID)
	require.True(t, ok)
	assert.Equal(t, alert.ID, got.ID)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestStoreCreateUnmatchedReturnsNil(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")

	assert.Nil(t, store.Create(&rule, EvaluationResult{}, Snapshot{}, time.Now()))
	assert.Zero(t, store.ActiveCount())
}

func TestStoreDedupSuppressesSecondCreate(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	now := time.Now()

	first := store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now)
	require.NotNil(t, first)

	// Same title, same rule: the dedup key matches and creation is suppressed.
	second := store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now.Add(time.Second))
	assert.Nil(t, second)
	assert.Equal(t, 1, store.ActiveCount())
}

func TestStoreDedupKeyOverride(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	rule.DedupKey = "static-key"
	now := time.Now()

	first := store.Create(&rule, matchedResult("CPU at 95%"), Snapshot{}, now)
	require.NotNil(t, first)

	// Differing titles share the explicit dedup key, so the second is suppressed.
	second := store.Create(&rule, matchedResult("CPU at 99%"), Snapshot{}, now.Add(time.Second))
	assert.Nil(t, second)
}

func TestStoreCooldownSuppressesAfterResolve(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	rule.CooldownSec = 300
	now := time.Now()

	first := store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now)
	require.NotNil(t, first)
	require.True(t, store.Resolve(first.ID, now.Add(time.Second)))

	// Inside the cooldown window creation stays suppressed even though the
	// dedup slot is free again.
	assert.Nil(t, store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now.Add(100*time.Second)))

	// Past the window a new alert fires.
	again := store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now.Add(301*time.Second))
	assert.NotNil(t, again)
}

func TestStoreConcurrentCreateSingleWinner(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	now := time.Now()

	const goroutines = 32
	var wg sync.WaitGroup
	created := make([]*Alert, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created[i] = store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, a := range created {
		if a != nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, store.ActiveCount())
}

func TestStoreAcknowledgeTransitions(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	now := time.Now()

	alert := store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now)
	require.NotNil(t, alert)

	require.True(t, store.Acknowledge(alert.ID, "ops", now.Add(time.Second)))
	got, _ := store.Get(alert.ID)
	assert.Equal(t, StatusAcknowledged, got.Status)
	assert.Equal(t, "ops", got.AcknowledgedBy)
	require.NotNil(t, got.AcknowledgedAt)

	// Acknowledging twice is an illegal transition.
	assert.False(t, store.Acknowledge(alert.ID, "ops", now.Add(2*time.Second)))
	// Unknown ID.
	assert.False(t, store.Acknowledge("missing", "ops", now))
}

func TestStoreResolveIsTerminal(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	now := time.Now()

	alert := store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now)
	require.NotNil(t, alert)

	require.True(t, store.Resolve(alert.ID, now.Add(time.Second)))
	assert.False(t, store.Resolve(alert.ID, now.Add(2*time.Second)))
	assert.False(t, store.Acknowledge(alert.ID, "ops", now.Add(2*time.Second)))
	assert.False(t, store.MarkEscalated(alert.ID, now.Add(2*time.Second)))

	// Resolved alerts remain readable from history.
	got, ok := store.Get(alert.ID)
	require.True(t, ok)
	assert.Equal(t, StatusResolved, got.Status)
	require.NotNil(t, got.ResolvedAt)

	history := store.History()
	require.Len(t, history, 1)
	assert.Equal(t, alert.ID, history[0].ID)
}

func TestStoreResolveAcknowledgedAlert(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	now := time.Now()

	alert := store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now)
	require.NotNil(t, alert)
	require.True(t, store.Acknowledge(alert.ID, "ops", now))
	assert.True(t, store.Resolve(alert.ID, now.Add(time.Second)))
}

func TestStoreMarkEscalatedOnce(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	now := time.Now()

	alert := store.Create(&rule, matchedResult("CPU high"), Snapshot{}, now)
	require.NotNil(t, alert)

	require.True(t, store.MarkEscalated(alert.ID, now.Add(time.Hour)))
	got, _ := store.Get(alert.ID)
	assert.Equal(t, StatusEscalated, got.Status)
	assert.Equal(t, SeverityCritical, got.Severity)
	require.NotNil(t, got.EscalatedAt)

	// One-shot.
	assert.False(t, store.MarkEscalated(alert.ID, now.Add(2*time.Hour)))

	// Escalated alerts can still be resolved.
	assert.True(t, store.Resolve(alert.ID, now.Add(3*time.Hour)))
}

func TestStoreHistoryEviction(t *testing.T) {
	t.Parallel()

	store := NewStore(3, NewCooldownTracker())
	now := time.Now()

	for i := 0; i < 5; i++ {
		rule := testRule(fmt.Sprintf("rule%d", i))
		alert := store.Create(&rule, matchedResult(fmt.Sprintf("title %d", i)), Snapshot{}, now.Add(time.Duration(i)*time.Second))
		require.NotNil(t, alert)
		require.True(t, store.Resolve(alert.ID, now.Add(time.Duration(i)*time.Second)))
	}

	history := store.History()
	require.Len(t, history, 3)
	// Oldest entries were evicted.
	assert.Equal(t, "rule2", history[0].RuleName)
	assert.Equal(t, "rule4", history[2].RuleName)
}

func TestStoreListActiveFilters(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	now := time.Now()

	cpu := testRule("highCPU")
	cpu.Tags = []string{"infra"}
	db := NewRule("databaseDown", TypeDatabase, SeverityCritical,
		Condition{Kind: CompareIsFalse, Key: KeyDatabaseConnected})

	a1 := store.Create(&cpu, matchedResult("CPU high"), Snapshot{}, now)
	require.NotNil(t, a1)
	a2 := store.Create(&db, matchedResult("Database connection lost"), Snapshot{}, now.Add(time.Second))
	require.NotNil(t, a2)

	all := store.ListActive(AlertFilter{})
	require.Len(t, all, 2)
	// Newest first.
	assert.Equal(t, a2.ID, all[0].ID)

	bySeverity := store.ListActive(AlertFilter{Severity: SeverityCritical})
	require.Len(t, bySeverity, 1)
	assert.Equal(t, a2.ID, bySeverity[0].ID)

	byType := store.ListActive(AlertFilter{Type: TypePerformance})
	require.Len(t, byType, 1)
	assert.Equal(t, a1.ID, byType[0].ID)

	byTag := store.ListActive(AlertFilter{Tag: "infra"})
	require.Len(t, byTag, 1)
	assert.Equal(t, a1.ID, byTag[0].ID)

	byRule := store.ListActive(AlertFilter{RuleName: "databaseDown"})
	require.Len(t, byRule, 1)

	assert.Empty(t, store.ListActive(AlertFilter{Status: StatusAcknowledged}))
}

func TestStoreReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewStore(10, NewCooldownTracker())
	rule := testRule("highCPU")
	now := time.Now()

	alert := store.Create(&rule, matchedResult("CPU high"), Snapshot{KeyCPUPercent: 95.0}, now)
	require.NotNil(t, alert)

	// Mutating the returned copy must not affect stored state.
	alert.Status = StatusResolved
	alert.Snapshot[KeyCPUPercent] = 0.0

	got, _ := store.Get(alert.ID)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, 95.0, got.Snapshot[KeyCPUPercent])
}
