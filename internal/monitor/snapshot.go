// Package monitor supplies the default system state snapshot the engine
// evaluates rules against, built from gopsutil readings plus
// externally-fed error and security counters.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
)

// errorRateWindow is the sliding window backing the errorRate1min key.
const errorRateWindow = time.Minute

// SystemProvider implements alerting.SnapshotProvider from live host
// metrics. RecordError and RecordSecurityEvent feed the application-level
// counters; the database probe is optional.
type SystemProvider struct {
	diskPath string
	dbProbe  func(ctx context.Context) bool

	mu             sync.Mutex
	errorTimes     []time.Time
	securityEvents int

	// System readers, injectable for tests.
	cpuPercent  func(ctx context.Context) (float64, error)
	memPercent  func(ctx context.Context) (float64, error)
	diskPercent func(ctx context.Context, path string) (float64, error)
}

// NewSystemProvider creates a provider sampling disk usage at diskPath.
// dbProbe may be nil, in which case databaseConnected reports true.
func NewSystemProvider(diskPath string, dbProbe func(ctx context.Context) bool) *SystemProvider {
	if diskPath == "" {
		diskPath = "/"
	}
	return &SystemProvider{
		diskPath: diskPath,
		dbProbe:  dbProbe,
		cpuPercent: func(ctx context.Context) (float64, error) {
			vals, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				return 0, err
			}
			if len(vals) == 0 {
				return 0, fmt.Errorf("no cpu samples")
			}
			return vals[0], nil
		},
		memPercent: func(ctx context.Context) (float64, error) {
			vm, err := mem.VirtualMemoryWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return vm.UsedPercent, nil
		},
		diskPercent: func(ctx context.Context, path string) (float64, error) {
			usage, err := disk.UsageWithContext(ctx, path)
			if err != nil {
				return 0, err
			}
			return usage.UsedPercent, nil
		},
	}
}

// RecordError notes one application error for the error-rate window.
func (p *SystemProvider) RecordError() {
	p.mu.Lock()
	p.errorTimes = append(p.errorTimes, time.Now())
	p.mu.Unlock()
}

// RecordSecurityEvent notes one security event. The count accumulates
// until ResetSecurityEvents.
func (p *SystemProvider) RecordSecurityEvent() {
	p.mu.Lock()
	p.securityEvents++
	p.mu.Unlock()
}

// ResetSecurityEvents zeroes the security event counter.
func (p *SystemProvider) ResetSecurityEvents() {
	p.mu.Lock()
	p.securityEvents = 0
	p.mu.Unlock()
}

// errorRate returns errors per minute over the window ending at now,
// pruning stale entries.
func (p *SystemProvider) errorRate(now time.Time) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	cutoff := now.Add(-errorRateWindow)
	keep := p.errorTimes[:0]
	for _, t := range p.errorTimes {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	p.errorTimes = keep
	return float64(len(keep))
}

func (p *SystemProvider) securityCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.securityEvents
}

// GetSnapshot assembles the flat state map. Individual reader failures
// omit their key rather than failing the snapshot, so conditions on the
// missing key simply evaluate false.
func (p *SystemProvider) GetSnapshot(ctx context.Context) (alerting.Snapshot, error) {
	now := time.Now()
	snap := alerting.Snapshot{
		alerting.KeyErrorRate1min:      p.errorRate(now),
		alerting.KeySecurityEventCount: p.securityCount(),
	}

	cpuPct, cpuErr := p.cpuPercent(ctx)
	if cpuErr == nil {
		snap[alerting.KeyCPUPercent] = cpuPct
	}
	memPct, memErr := p.memPercent(ctx)
	if memErr == nil {
		snap[alerting.KeyMemoryPercent] = memPct
	}
	diskPct, diskErr := p.diskPercent(ctx, p.diskPath)
	if diskErr == nil {
		snap[alerting.KeyDiskPercent] = diskPct
	}

	connected := true
	if p.dbProbe != nil {
		connected = p.dbProbe(ctx)
	}
	snap[alerting.KeyDatabaseConnected] = connected

	snap[alerting.KeyHealthStatus] = deriveHealth(cpuPct, memPct, diskPct, connected,
		cpuErr == nil && memErr == nil && diskErr == nil)
	return snap, nil
}

// deriveHealth folds the readings into a single worst-of status.
func deriveHealth(cpuPct, memPct, diskPct float64, dbConnected, readsOK bool) string {
	switch {
	case !dbConnected:
		return alerting.HealthCritical
	case !readsOK:
		return alerting.HealthUnhealthy
	case cpuPct > 95 || memPct > 95 || diskPct > 95:
		return alerting.HealthCritical
	case cpuPct > 90 || memPct > 90 || diskPct > 90:
		return alerting.HealthDegraded
	case cpuPct > 80 || memPct > 80 || diskPct > 85:
		return alerting.HealthWarning
	default:
		return alerting.HealthHealthy
	}
}
