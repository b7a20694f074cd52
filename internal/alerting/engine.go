package alerting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robert1948/localstorm-sub001/internal/logger"
	"github.com/robert1948/localstorm-sub001/internal/metrics"
)

const (
	// defaultMonitorInterval is the evaluation cadence when none is set.
	defaultMonitorInterval = 60 * time.Second
	// defaultEscalationInterval is the escalation scan cadence.
	defaultEscalationInterval = 30 * time.Second
	// sinkTimeout bounds best-effort history/audit persistence calls.
	sinkTimeout = 3 * time.Second
)

// AuditLogger receives best-effort audit events after alert creation.
// Failures are logged and swallowed, never propagated.
type AuditLogger interface {
	LogEvent(eventType, component, status string, metadata map[string]any) error
}

// HistorySink persists the alert trail outside the in-memory ring. Calls
// are best-effort with a short timeout; persistence failures never affect
// alert lifecycle.
type HistorySink interface {
	AlertFired(ctx context.Context, alert *Alert) error
	AlertStatusChanged(ctx context.Context, alertID string, status Status, at time.Time) error
}

// Options configures an Engine. Zero values fall back to defaults; Audit,
// History, and Metrics are optional.
type Options struct {
	MonitorInterval    time.Duration
	EscalationInterval time.Duration
	HistoryCapacity    int
	Audit              AuditLogger
	History            HistorySink
	Metrics            *metrics.Recorder
}

// Engine owns the monitoring loop, escalation scheduler, and the shared
// alerting state. Construct it once at startup and pass the handle to
// whatever schedules it and whatever exposes it to administrative callers;
// NewEngine starts no background work; that is Start's job.
type Engine struct {
	opts       Options
	registry   *Registry
	channels   *ChannelSet
	cooldowns  *CooldownTracker
	store      *Store
	dispatcher *Dispatcher
	escalator  *Escalator
	snapshots  SnapshotProvider
	log        logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewEngine wires the engine's components. It has no observable side
// effects beyond allocation.
func NewEngine(opts Options, snapshots SnapshotProvider, log logger.Logger) *Engine {
	if opts.MonitorInterval <= 0 {
		opts.MonitorInterval = defaultMonitorInterval
	}
	if opts.EscalationInterval <= 0 {
		opts.EscalationInterval = defaultEscalationInterval
	}
	cooldowns := NewCooldownTracker()
	channels := NewChannelSet()
	store := NewStore(opts.HistoryCapacity, cooldowns)
	registry := NewRegistry()
	dispatcher := NewDispatcher(channels, cooldowns, log)
	return &Engine{
		opts:       opts,
		registry:   registry,
		channels:   channels,
		cooldowns:  cooldowns,
		store:      store,
		dispatcher: dispatcher,
		escalator:  NewEscalator(store, registry, dispatcher, log),
		snapshots:  snapshots,
		log:        log,
	}
}

// Rules exposes the rule registry.
func (e *Engine) Rules() *Registry { return e.registry }

// Channels exposes the channel set.
func (e *Engine) Channels() *ChannelSet { return e.channels }

// AddRule registers or replaces a rule.
func (e *Engine) AddRule(rule AlertRule) error { return e.registry.AddRule(rule) }

// RemoveRule removes a rule by name.
func (e *Engine) RemoveRule(name string) bool { return e.registry.RemoveRule(name) }

// AddChannel registers or replaces a channel.
func (e *Engine) AddChannel(ch Channel) error { return e.channels.Add(ch) }

// Start launches the monitoring loop and escalation scheduler. It returns
// an error if the engine is already running. The loops stop when ctx is
// cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return fmt.Errorf("alerting engine already started")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true

	e.wg.Add(2)
	go e.monitorLoop(loopCtx)
	go e.escalationLoop(loopCtx)

	e.log.Info("alerting engine started",
		logger.Duration("interval", e.opts.MonitorInterval),
		logger.Duration("escalation_interval", e.opts.EscalationInterval))
	return nil
}

// Stop cancels the background loops and waits for any in-flight tick to
// finish. Already-created alerts stay in the store. Safe to call multiple
// times.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	e.wg.Wait()
	e.log.Info("alerting engine stopped")
}

func (e *Engine) monitorLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.opts.MonitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.RunTick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) escalationLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.opts.EscalationInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.RunEscalations(ctx, time.Now())
		case <-ctx.Done():
			return
		}
	}
}

// RunTick performs one monitoring pass: pull a snapshot, evaluate every
// enabled rule, create and dispatch alerts for matches. A snapshot failure
// skips the tick; the next interval is the retry. Failures local to one
// rule are contained so the remaining rules still run.
func (e *Engine) RunTick(ctx context.Context) {
	snap, err := e.snapshots.GetSnapshot(ctx)
	if err != nil {
		e.log.Warn("snapshot unavailable, skipping tick", logger.Error(err))
		return
	}
	now := time.Now()
	for _, rule := range e.registry.EnabledRules() {
		e.evaluateRule(ctx, &rule, snap, now)
	}
	e.opts.Metrics.SetActiveAlerts(e.store.ActiveCount())
}

// evaluateRule runs one rule against the snapshot with panic containment.
func (e *Engine) evaluateRule(ctx context.Context, rule *AlertRule, snap Snapshot, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			e.opts.Metrics.EvaluationFailed()
			e.log.Error("rule evaluation panicked",
				logger.String("rule", rule.Name),
				logger.Any("panic", r))
		}
	}()

	if !KnownComparator(rule.Condition.Kind) {
		e.opts.Metrics.EvaluationFailed()
		e.log.Warn("rule has unknown condition, it will never fire",
			logger.String("rule", rule.Name),
			logger.String("kind", string(rule.Condition.Kind)))
		return
	}

	eval := Evaluate(rule, snap)
	if !eval.Matched {
		return
	}

	alert := e.store.Create(rule, eval, snap, now)
	if alert == nil {
		// Deduplicated or cooled down; expected steady-state behavior.
		return
	}
	e.afterCreate(ctx, alert, rule, now)
}

// afterCreate handles audit, persistence, metrics, and dispatch for a newly
// created alert. All I/O happens outside the store lock.
func (e *Engine) afterCreate(ctx context.Context, alert *Alert, rule *AlertRule, now time.Time) {
	e.opts.Metrics.AlertFired(string(alert.Severity), string(alert.Type))
	e.log.Info("alert created",
		logger.String("alert_id", alert.ID),
		logger.String("rule", alert.RuleName),
		logger.String("severity", string(alert.Severity)),
		logger.String("title", alert.Title))

	e.safeAudit("alert_created", string(alert.Status), map[string]any{
		"alert_id": alert.ID,
		"rule":     alert.RuleName,
		"severity": string(alert.Severity),
		"type":     string(alert.Type),
	})
	e.persistFired(alert)

	reports := e.dispatcher.Dispatch(ctx, alert.RenderPayload(), rule.Channels, rule.Name, now)
	e.recordReports(reports)
}

// safeAudit makes the best-effort audit call; errors and panics are logged
// and swallowed so audit trouble never aborts creation or delivery.
func (e *Engine) safeAudit(eventType, status string, metadata map[string]any) {
	if e.opts.Audit == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("audit logger panicked", logger.Any("panic", r))
		}
	}()
	if err := e.opts.Audit.LogEvent(eventType, "alerting", status, metadata); err != nil {
		e.log.Warn("audit log failed", logger.Error(err))
	}
}

func (e *Engine) persistFired(alert *Alert) {
	if e.opts.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := e.opts.History.AlertFired(ctx, alert); err != nil {
		e.log.Error("failed to persist alert history",
			logger.String("alert_id", alert.ID),
			logger.Error(err))
	}
}

func (e *Engine) persistStatus(alertID string, status Status, at time.Time) {
	if e.opts.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := e.opts.History.AlertStatusChanged(ctx, alertID, status, at); err != nil {
		e.log.Error("failed to persist alert status",
			logger.String("alert_id", alertID),
			logger.Error(err))
	}
}

func (e *Engine) recordReports(reports []DeliveryReport) {
	for i := range reports {
		r := &reports[i]
		switch {
		case r.Delivered:
			e.opts.Metrics.Delivery(r.Channel, metrics.OutcomeDelivered)
		case r.Skipped:
			e.opts.Metrics.Delivery(r.Channel, metrics.OutcomeSkipped)
		default:
			e.opts.Metrics.Delivery(r.Channel, metrics.OutcomeFailed)
		}
	}
}

// RunEscalations performs one escalation scan, dispatching escalated
// payloads to all enabled channels. Returns the alerts just escalated.
func (e *Engine) RunEscalations(ctx context.Context, now time.Time) []Alert {
	escalated := e.escalator.CheckEscalations(ctx, now)
	for i := range escalated {
		e.opts.Metrics.Escalated()
		e.persistStatus(escalated[i].ID, StatusEscalated, now)
	}
	return escalated
}

// CreateAlert creates an alert for the named rule on behalf of an
// administrative caller, using the provided title and description and the
// current snapshot as context. Returns (nil, nil) when suppressed by
// dedup or cooldown.
func (e *Engine) CreateAlert(ctx context.Context, ruleName, title, description string) (*Alert, error) {
	rule, ok := e.registry.GetRule(ruleName)
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", ruleName)
	}

	snap, err := e.snapshots.GetSnapshot(ctx)
	if err != nil {
		// Manual creation proceeds without context rather than failing.
		e.log.Warn("snapshot unavailable for manual alert", logger.Error(err))
		snap = Snapshot{}
	}

	now := time.Now()
	eval := EvaluationResult{Matched: true, Title: title, Description: description}
	alert := e.store.Create(&rule, eval, snap, now)
	if alert == nil {
		return nil, nil
	}
	e.afterCreate(ctx, alert, &rule, now)
	return alert, nil
}

// AcknowledgeAlert marks an alert acknowledged by actor. Returns false for
// unknown IDs or illegal transitions.
func (e *Engine) AcknowledgeAlert(id, actor string) bool {
	now := time.Now()
	if !e.store.Acknowledge(id, actor, now) {
		return false
	}
	e.persistStatus(id, StatusAcknowledged, now)
	e.safeAudit("alert_acknowledged", string(StatusAcknowledged), map[string]any{
		"alert_id": id,
		"actor":    actor,
	})
	return true
}

// ResolveAlert resolves an alert, moving it into history. Returns false for
// unknown IDs or already-resolved alerts.
func (e *Engine) ResolveAlert(id string) bool {
	now := time.Now()
	if !e.store.Resolve(id, now) {
		return false
	}
	e.opts.Metrics.SetActiveAlerts(e.store.ActiveCount())
	e.persistStatus(id, StatusResolved, now)
	e.safeAudit("alert_resolved", string(StatusResolved), map[string]any{
		"alert_id": id,
	})
	return true
}

// GetAlert returns the alert with the given ID, active or historical.
func (e *Engine) GetAlert(id string) (Alert, bool) { return e.store.Get(id) }

// ListActiveAlerts returns non-resolved alerts matching the filter.
func (e *Engine) ListActiveAlerts(filter AlertFilter) []Alert { return e.store.ListActive(filter) }

// History returns the in-memory resolved-alert ring, oldest first.
func (e *Engine) History() []Alert { return e.store.History() }

// Statistics summarizes the engine's current state.
type Statistics struct {
	ActiveAlerts    int               `json:"active_alerts"`
	BySeverity      map[Severity]int  `json:"by_severity"`
	ByType          map[AlertType]int `json:"by_type"`
	ByStatus        map[Status]int    `json:"by_status"`
	RulesTotal      int               `json:"rules_total"`
	RulesEnabled    int               `json:"rules_enabled"`
	ChannelsTotal   int               `json:"channels_total"`
	ChannelsEnabled int               `json:"channels_enabled"`
	FiredLast24h    int               `json:"fired_last_24h"`
}

// GetStatistics returns a point-in-time summary.
func (e *Engine) GetStatistics() Statistics {
	bySeverity, byType, byStatus := e.store.CountsBy()
	rulesTotal, rulesEnabled := e.registry.Counts()
	channelsTotal, channelsEnabled := e.channels.Counts()
	return Statistics{
		ActiveAlerts:    e.store.ActiveCount(),
		BySeverity:      bySeverity,
		ByType:          byType,
		ByStatus:        byStatus,
		RulesTotal:      rulesTotal,
		RulesEnabled:    rulesEnabled,
		ChannelsTotal:   channelsTotal,
		ChannelsEnabled: channelsEnabled,
		FiredLast24h:    e.store.FiredSince(time.Now().Add(-24 * time.Hour)),
	}
}
