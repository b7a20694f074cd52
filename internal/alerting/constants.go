// Package alerting implements the alert rule registry, condition evaluation,
// alert lifecycle, cooldown tracking, and notification dispatch engine.
package alerting

// AlertType categorizes what a rule monitors.
type AlertType string

const (
	TypeHealth      AlertType = "health"
	TypeErrorRate   AlertType = "error_rate"
	TypePerformance AlertType = "performance"
	TypeCapacity    AlertType = "capacity"
	TypeDatabase    AlertType = "database"
	TypeSecurity    AlertType = "security"
	TypeCustom      AlertType = "custom"
)

// Severity orders alert importance from info (lowest) to emergency (highest).
type Severity string

const (
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeverityError     Severity = "error"
	SeverityCritical  Severity = "critical"
	SeverityEmergency Severity = "emergency"
)

var severityRank = map[Severity]int{
	SeverityInfo:      0,
	SeverityWarning:   1,
	SeverityError:     2,
	SeverityCritical:  3,
	SeverityEmergency: 4,
}

// Rank returns the ordinal position of a severity; unknown severities rank
// below info.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// Status is the lifecycle state of an alert. Transitions only move forward:
// active → acknowledged/resolved/escalated, acknowledged → resolved/escalated,
// escalated → resolved. Resolved is terminal.
type Status string

const (
	StatusActive       Status = "active"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
	StatusEscalated    Status = "escalated"
)

// ComparatorKind selects a named comparison from the closed comparator set.
type ComparatorKind string

const (
	CompareGreaterThan ComparatorKind = "greater_than"
	CompareNotEquals   ComparatorKind = "not_equals"
	CompareEquals      ComparatorKind = "equals"
	CompareIsFalse     ComparatorKind = "is_false"
)

// Snapshot keys supplied by the state provider. Conditions referencing keys
// absent from a snapshot evaluate false.
const (
	KeyErrorRate1min      = "errorRate1min"
	KeyHealthStatus       = "healthStatus"
	KeyCPUPercent         = "cpuPercent"
	KeyMemoryPercent      = "memoryPercent"
	KeyDiskPercent        = "diskPercent"
	KeyDatabaseConnected  = "databaseConnected"
	KeySecurityEventCount = "securityEventCount"
)

// Health status values carried under KeyHealthStatus.
const (
	HealthHealthy   = "healthy"
	HealthWarning   = "warning"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
	HealthCritical  = "critical"
)

const (
	// DefaultCooldownSec is the minimum spacing between two alert creations
	// from the same rule and dedup key when the rule does not set its own.
	DefaultCooldownSec = 300
	// DefaultEscalationSec is the unresolved-alert promotion timeout applied
	// by NewRule; 0 on a rule disables escalation.
	DefaultEscalationSec = 1800
	// DefaultHistoryCapacity bounds the in-memory resolved-alert ring.
	DefaultHistoryCapacity = 1000
)
