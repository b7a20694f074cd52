package alerting

import (
	"fmt"
)

// EvaluationResult is the outcome of evaluating one rule against one
// snapshot. Title and Description are rendered only when the condition
// matched.
type EvaluationResult struct {
	Matched     bool   `json:"matched"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type comparatorFunc func(cond *Condition, snap Snapshot) bool

// comparators is the closed set of named comparisons a condition may select.
var comparators = map[ComparatorKind]comparatorFunc{
	CompareGreaterThan: func(cond *Condition, snap Snapshot) bool {
		v, ok := snap.Float(cond.Key)
		return ok && v > cond.Threshold
	},
	CompareNotEquals: func(cond *Condition, snap Snapshot) bool {
		v, ok := snap.String(cond.Key)
		return ok && v != cond.Operand
	},
	CompareEquals: func(cond *Condition, snap Snapshot) bool {
		v, ok := snap.String(cond.Key)
		return ok && v == cond.Operand
	},
	CompareIsFalse: func(cond *Condition, snap Snapshot) bool {
		v, ok := snap.Bool(cond.Key)
		return ok && !v
	},
}

// KnownComparator reports whether kind is in the comparator set. Rules with
// unknown kinds never fire; callers surface a diagnostic instead of failing
// registration.
func KnownComparator(kind ComparatorKind) bool {
	_, ok := comparators[kind]
	return ok
}

// Evaluate decides whether the rule's condition holds for the snapshot and,
// when it does, renders the human-readable title and description. Pure:
// identical inputs always yield identical results.
func Evaluate(rule *AlertRule, snap Snapshot) EvaluationResult {
	compare, ok := comparators[rule.Condition.Kind]
	if !ok || !compare(&rule.Condition, snap) {
		return EvaluationResult{}
	}
	return EvaluationResult{
		Matched:     true,
		Title:       renderTitle(rule, snap),
		Description: renderDescription(rule, snap),
	}
}

// keyLabels maps snapshot keys to display labels for rendered titles.
var keyLabels = map[string]string{
	KeyErrorRate1min:      "Error rate",
	KeyCPUPercent:         "CPU usage",
	KeyMemoryPercent:      "Memory usage",
	KeyDiskPercent:        "Disk usage",
	KeySecurityEventCount: "Security events",
}

func keyLabel(key string) string {
	if l, ok := keyLabels[key]; ok {
		return l
	}
	return key
}

func renderTitle(rule *AlertRule, snap Snapshot) string {
	cond := &rule.Condition
	switch rule.Type {
	case TypeErrorRate:
		v, _ := snap.Float(cond.Key)
		return fmt.Sprintf("Error rate %.1f/min exceeds threshold %.1f/min", v, cond.Threshold)
	case TypeHealth:
		v, _ := snap.String(cond.Key)
		return fmt.Sprintf("Health status is %s", v)
	case TypePerformance, TypeCapacity:
		v, _ := snap.Float(cond.Key)
		return fmt.Sprintf("%s at %.1f%% (threshold %.1f%%)", keyLabel(cond.Key), v, cond.Threshold)
	case TypeDatabase:
		return "Database connection lost"
	case TypeSecurity:
		v, _ := snap.Float(cond.Key)
		return fmt.Sprintf("%.0f security events detected (threshold %.0f)", v, cond.Threshold)
	default:
		return fmt.Sprintf("Condition met for rule %s", rule.Name)
	}
}

func renderDescription(rule *AlertRule, snap Snapshot) string {
	cond := &rule.Condition
	var observed string
	switch cond.Kind {
	case CompareGreaterThan:
		v, _ := snap.Float(cond.Key)
		observed = fmt.Sprintf("%s=%.2f exceeded threshold %.2f", cond.Key, v, cond.Threshold)
	case CompareNotEquals:
		v, _ := snap.String(cond.Key)
		observed = fmt.Sprintf("%s=%q differs from expected %q", cond.Key, v, cond.Operand)
	case CompareEquals:
		v, _ := snap.String(cond.Key)
		observed = fmt.Sprintf("%s=%q matched %q", cond.Key, v, cond.Operand)
	case CompareIsFalse:
		observed = fmt.Sprintf("%s is false", cond.Key)
	}
	if rule.Description != "" {
		return fmt.Sprintf("%s: %s", rule.Description, observed)
	}
	return fmt.Sprintf("Rule %s fired: %s", rule.Name, observed)
}
