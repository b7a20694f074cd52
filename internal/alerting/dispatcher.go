package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robert1948/localstorm-sub001/internal/logger"
)

// Skip reasons recorded in delivery reports.
const (
	SkipUnknownChannel  = "unknown channel"
	SkipChannelDisabled = "channel disabled"
	SkipRateLimited     = "rate limited"
)

// DeliveryReport records the outcome of one channel delivery attempt.
// Intended for observability of the alerting system itself.
type DeliveryReport struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Delivered bool      `json:"delivered"`
	Skipped   bool      `json:"skipped"`
	Reason    string    `json:"reason,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// Dispatcher fans a payload out to channels. Channels are independent: one
// failure never prevents delivery attempts on the others, and no delivery
// happens while the store lock is held.
type Dispatcher struct {
	channels  *ChannelSet
	cooldowns *CooldownTracker
	log       logger.Logger
}

// NewDispatcher creates a dispatcher over the given channel set and tracker.
func NewDispatcher(channels *ChannelSet, cooldowns *CooldownTracker, log logger.Logger) *Dispatcher {
	return &Dispatcher{channels: channels, cooldowns: cooldowns, log: log}
}

// Dispatch attempts delivery on each named channel in order, honoring
// per-channel rate limits and timeouts. Every channel gets a report; a
// recovered adapter panic counts as a failed delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, payload *Payload, channelNames []string, ruleName string, now time.Time) []DeliveryReport {
	reports := make([]DeliveryReport, 0, len(channelNames))
	for _, name := range channelNames {
		reports = append(reports, d.deliver(ctx, payload, name, ruleName, now))
	}
	return reports
}

// DispatchAll delivers to every currently enabled channel regardless of a
// rule's configured list. Used for escalations, which must reach every
// available medium.
func (d *Dispatcher) DispatchAll(ctx context.Context, payload *Payload, ruleName string, now time.Time) []DeliveryReport {
	return d.Dispatch(ctx, payload, d.channels.EnabledNames(), ruleName, now)
}

func (d *Dispatcher) deliver(ctx context.Context, payload *Payload, channelName, ruleName string, now time.Time) DeliveryReport {
	report := DeliveryReport{
		ID:      uuid.NewString(),
		Channel: channelName,
		At:      now,
	}

	ch, ok := d.channels.Get(channelName)
	if !ok {
		report.Skipped = true
		report.Reason = SkipUnknownChannel
		d.log.Warn("rule references unknown channel",
			logger.String("rule", ruleName),
			logger.String("channel", channelName))
		return report
	}
	if !ch.Enabled {
		report.Skipped = true
		report.Reason = SkipChannelDisabled
		return report
	}
	if d.cooldowns.ShouldSuppressDelivery(channelName, ruleName, ch.RateLimit(), now) {
		report.Skipped = true
		report.Reason = SkipRateLimited
		return report
	}

	sendCtx, cancel := context.WithTimeout(ctx, ch.timeout())
	err := d.send(sendCtx, ch.Adapter, payload)
	cancel()

	if err != nil {
		report.Error = err.Error()
		d.log.Error("channel delivery failed",
			logger.String("rule", ruleName),
			logger.String("channel", channelName),
			logger.String("alert_id", payload.AlertID),
			logger.Error(err))
		return report
	}

	report.Delivered = true
	d.cooldowns.RecordDelivery(channelName, ruleName, now)
	d.log.Debug("notification delivered",
		logger.String("channel", channelName),
		logger.String("alert_id", payload.AlertID))
	return report
}

// send invokes the adapter with panic recovery so a misbehaving adapter
// cannot take down a tick.
func (d *Dispatcher) send(ctx context.Context, adapter ChannelAdapter, payload *Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("adapter panic: %v", r)
		}
	}()
	return adapter.Send(ctx, payload)
}
