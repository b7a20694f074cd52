package alerting

// DefaultRules returns the built-in rules seeded when the rule store is
// empty. Operators can edit or disable them like any other rule.
func DefaultRules() []AlertRule {
	highErrorRate := NewRule("highErrorRate", TypeErrorRate, SeverityError, Condition{
		Kind:      CompareGreaterThan,
		Key:       KeyErrorRate1min,
		Threshold: 10,
	})
	highErrorRate.Description = "Error rate above 10 errors/min"
	highErrorRate.Channels = []string{"log"}

	unhealthy := NewRule("unhealthyStatus", TypeHealth, SeverityWarning, Condition{
		Kind:    CompareNotEquals,
		Key:     KeyHealthStatus,
		Operand: HealthHealthy,
	})
	unhealthy.Description = "Overall health status left healthy"
	unhealthy.Channels = []string{"log"}
	unhealthy.CooldownSec = 600

	highCPU := NewRule("highCPU", TypePerformance, SeverityWarning, Condition{
		Kind:      CompareGreaterThan,
		Key:       KeyCPUPercent,
		Threshold: 90,
	})
	highCPU.Description = "CPU usage above 90%"
	highCPU.Channels = []string{"log"}
	highCPU.DurationSec = 300

	highMemory := NewRule("highMemory", TypeCapacity, SeverityWarning, Condition{
		Kind:      CompareGreaterThan,
		Key:       KeyMemoryPercent,
		Threshold: 90,
	})
	highMemory.Description = "Memory usage above 90%"
	highMemory.Channels = []string{"log"}
	highMemory.DurationSec = 300

	lowDisk := NewRule("lowDiskSpace", TypeCapacity, SeverityCritical, Condition{
		Kind:      CompareGreaterThan,
		Key:       KeyDiskPercent,
		Threshold: 85,
	})
	lowDisk.Description = "Disk usage above 85%"
	lowDisk.Channels = []string{"log"}
	lowDisk.CooldownSec = 1800

	databaseDown := NewRule("databaseDown", TypeDatabase, SeverityCritical, Condition{
		Kind: CompareIsFalse,
		Key:  KeyDatabaseConnected,
	})
	databaseDown.Description = "Database connection lost"
	databaseDown.Channels = []string{"log"}
	databaseDown.CooldownSec = 120
	databaseDown.EscalationSec = 600

	securityEvents := NewRule("securityEvents", TypeSecurity, SeverityCritical, Condition{
		Kind:      CompareGreaterThan,
		Key:       KeySecurityEventCount,
		Threshold: 5,
	})
	securityEvents.Description = "More than 5 security events in the window"
	securityEvents.Channels = []string{"log"}
	securityEvents.CooldownSec = 600

	return []AlertRule{
		highErrorRate, unhealthy, highCPU, highMemory, lowDisk, databaseDown, securityEvents,
	}
}
