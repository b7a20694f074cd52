package alerting

import (
	"sort"
	"sync"
	"time"
)

// AlertFilter narrows ListActive results. Zero-value fields are ignored.
type AlertFilter struct {
	Severity Severity
	Type     AlertType
	Status   Status
	RuleName string
	Tag      string
}

// Store holds currently active alerts plus a bounded ring of resolved ones.
// All mutating operations are serialized under one mutex so that
// check-then-act sequences (dedup lookup then insert, cooldown check then
// record) preserve the at-most-one-active-alert-per-key invariant under
// concurrent ticks. Nothing under the lock performs I/O.
type Store struct {
	mu        sync.Mutex
	active    map[string]*Alert // dedup key → alert
	byID      map[string]*Alert
	dedupByID map[string]string // alert ID → dedup key
	history   []*Alert
	capacity  int
	cooldowns *CooldownTracker
}

// NewStore creates a store with the given history capacity (<=0 uses the
// default) sharing the given cooldown tracker.
func NewStore(capacity int, cooldowns *CooldownTracker) *Store {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &Store{
		active:    make(map[string]*Alert),
		byID:      make(map[string]*Alert),
		dedupByID: make(map[string]string),
		history:   make([]*Alert, 0, capacity),
		capacity:  capacity,
		cooldowns: cooldowns,
	}
}

// Create inserts a new alert for the rule unless an active alert already
// exists for its dedup key or the rule's cooldown suppresses it. Returns nil
// on suppression; suppression is expected steady-state behavior, not an
// error.
func (s *Store) Create(rule *AlertRule, eval EvaluationResult, snap Snapshot, now time.Time) *Alert {
	if !eval.Matched {
		return nil
	}
	key := dedupKeyFor(rule, eval.Title)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.active[key]; ok && existing.Status != StatusResolved {
		return nil
	}
	if s.cooldowns.ShouldSuppressCreation(rule.Name, key, rule.Cooldown(), now) {
		return nil
	}

	alert := &Alert{
		ID:          newAlertID(rule.Name, now),
		RuleName:    rule.Name,
		Type:        rule.Type,
		Severity:    rule.Severity,
		Title:       eval.Title,
		Description: eval.Description,
		Status:      StatusActive,
		CreatedAt:   now,
		Snapshot:    snap.clone(),
		Tags:        append([]string(nil), rule.Tags...),
	}
	s.active[key] = alert
	s.byID[alert.ID] = alert
	s.dedupByID[alert.ID] = key
	s.cooldowns.RecordCreation(rule.Name, key, now)

	out := alert.clone()
	return &out
}

// Get returns a copy of the alert with the given ID, active or historical.
func (s *Store) Get(id string) (Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.byID[id]; ok {
		return a.clone(), true
	}
	for _, a := range s.history {
		if a.ID == id {
			return a.clone(), true
		}
	}
	return Alert{}, false
}

// ListActive returns copies of non-resolved alerts matching the filter,
// newest first.
func (s *Store) ListActive(filter AlertFilter) []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Alert, 0, len(s.byID))
	for _, a := range s.byID {
		if !matchAlert(a, &filter) {
			continue
		}
		out = append(out, a.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func matchAlert(a *Alert, f *AlertFilter) bool {
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.RuleName != "" && a.RuleName != f.RuleName {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range a.Tags {
			if t == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Acknowledge marks an active alert as acknowledged by the given actor.
// Returns false for unknown IDs or illegal transitions; those are expected
// races, not errors.
func (s *Store) Acknowledge(id, actor string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok || a.Status != StatusActive {
		return false
	}
	a.Status = StatusAcknowledged
	a.AcknowledgedBy = actor
	t := now
	a.AcknowledgedAt = &t
	return true
}

// Resolve terminates the alert's lifecycle, removing it from the active set
// and appending it to the history ring. Returns false if the ID is unknown
// or already resolved.
func (s *Store) Resolve(id string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok || a.Status == StatusResolved {
		return false
	}
	a.Status = StatusResolved
	t := now
	a.ResolvedAt = &t
	delete(s.byID, id)
	if key, ok := s.dedupByID[id]; ok {
		delete(s.dedupByID, id)
		if s.active[key] == a {
			delete(s.active, key)
		}
	}
	s.appendHistory(a)
	return true
}

// MarkEscalated promotes an unresolved, not-yet-escalated alert and forces
// its severity to critical. One-shot: returns false on any repeat attempt.
func (s *Store) MarkEscalated(id string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok || a.EscalatedAt != nil {
		return false
	}
	if a.Status != StatusActive && a.Status != StatusAcknowledged {
		return false
	}
	a.Status = StatusEscalated
	a.Severity = SeverityCritical
	t := now
	a.EscalatedAt = &t
	return true
}

// escalationCandidates returns copies of unresolved alerts that have not yet
// been escalated.
func (s *Store) escalationCandidates() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Alert
	for _, a := range s.byID {
		if a.EscalatedAt != nil {
			continue
		}
		if a.Status != StatusActive && a.Status != StatusAcknowledged {
			continue
		}
		out = append(out, a.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// History returns copies of resolved alerts, oldest first.
func (s *Store) History() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Alert, 0, len(s.history))
	for _, a := range s.history {
		out = append(out, a.clone())
	}
	return out
}

// appendHistory must be called with the lock held. Evicts the oldest entry
// past capacity.
func (s *Store) appendHistory(a *Alert) {
	s.history = append(s.history, a)
	if len(s.history) > s.capacity {
		over := len(s.history) - s.capacity
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
}

// ActiveCount returns the number of non-resolved alerts.
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// CountsBy returns active-alert counts grouped by severity, type, and status.
func (s *Store) CountsBy() (bySeverity map[Severity]int, byType map[AlertType]int, byStatus map[Status]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bySeverity = make(map[Severity]int)
	byType = make(map[AlertType]int)
	byStatus = make(map[Status]int)
	for _, a := range s.byID {
		bySeverity[a.Severity]++
		byType[a.Type]++
		byStatus[a.Status]++
	}
	return bySeverity, byType, byStatus
}

// FiredSince counts alerts (active and historical) created at or after t.
func (s *Store) FiredSince(t time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.byID {
		if !a.CreatedAt.Before(t) {
			n++
		}
	}
	for _, a := range s.history {
		if !a.CreatedAt.Before(t) {
			n++
		}
	}
	return n
}
