package notify

import (
	"fmt"
	"time"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
	"github.com/robert1948/localstorm-sub001/internal/conf"
	"github.com/robert1948/localstorm-sub001/internal/logger"
)

// BuildChannel constructs a channel (adapter plus delivery policy) from its
// configuration.
func BuildChannel(cfg *conf.ChannelConfig, log logger.Logger) (alerting.Channel, error) {
	var (
		adapter alerting.ChannelAdapter
		err     error
	)
	switch cfg.Kind {
	case conf.ChannelKindLog:
		adapter = NewLogAdapter(cfg.Name, log)
	case conf.ChannelKindWebhook:
		if cfg.Webhook.URL == "" {
			return alerting.Channel{}, fmt.Errorf("webhook channel %q: url is required", cfg.Name)
		}
		adapter = NewWebhookAdapter(cfg.Name, cfg.Webhook.URL, cfg.Webhook.Headers)
	case conf.ChannelKindEmail:
		adapter = NewEmailAdapter(cfg.Name, cfg.Email.Host, cfg.Email.Port,
			cfg.Email.From, cfg.Email.Password, cfg.Email.To)
	case conf.ChannelKindSlack:
		adapter = NewSlackAdapter(cfg.Name, cfg.Slack.Token, cfg.Slack.Channel)
	case conf.ChannelKindMQTT:
		clientID := cfg.MQTT.ClientID
		if clientID == "" {
			clientID = "stormalert-" + cfg.Name
		}
		adapter = NewMQTTAdapter(cfg.Name, cfg.MQTT.Broker, clientID,
			cfg.MQTT.Username, cfg.MQTT.Password, cfg.MQTT.Topic)
	case conf.ChannelKindShoutrrr:
		adapter, err = NewShoutrrrAdapter(cfg.Name, cfg.Shoutrrr.URLs)
		if err != nil {
			return alerting.Channel{}, err
		}
	default:
		return alerting.Channel{}, fmt.Errorf("channel %q: unknown kind %q", cfg.Name, cfg.Kind)
	}

	return alerting.Channel{
		Name:         cfg.Name,
		Enabled:      cfg.Enabled,
		RateLimitSec: cfg.RateLimitSeconds,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		Adapter:      adapter,
	}, nil
}
