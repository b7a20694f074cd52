// Package conf loads and validates engine configuration from YAML files and
// environment variables via viper.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the root configuration document.
type Settings struct {
	Log      LogSettings      `mapstructure:"log"`
	Monitor  MonitorSettings  `mapstructure:"monitor"`
	Database DatabaseSettings `mapstructure:"database"`
	HTTP     HTTPSettings     `mapstructure:"http"`
	Sentry   SentrySettings   `mapstructure:"sentry"`
	Channels []ChannelConfig  `mapstructure:"channels"`
}

// LogSettings controls the daemon logger.
type LogSettings struct {
	Level string `mapstructure:"level"`
}

// MonitorSettings controls the evaluation and escalation loops.
type MonitorSettings struct {
	Interval             Duration `mapstructure:"interval"`
	EscalationInterval   Duration `mapstructure:"escalation_interval"`
	HistoryCapacity      int      `mapstructure:"history_capacity"`
	HistoryRetentionDays int      `mapstructure:"history_retention_days"`
}

// DatabaseSettings names the SQLite file backing rule/channel/history
// persistence.
type DatabaseSettings struct {
	Path string `mapstructure:"path"`
}

// HTTPSettings configures the admin API listener.
type HTTPSettings struct {
	Listen string `mapstructure:"listen"`
}

// SentrySettings configures optional crash telemetry.
type SentrySettings struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// ChannelConfig configures one notification channel. Kind selects the
// adapter implementation; the kind-specific block carries its credentials.
type ChannelConfig struct {
	Name             string           `mapstructure:"name"`
	Kind             string           `mapstructure:"kind"`
	Enabled          bool             `mapstructure:"enabled"`
	RateLimitSeconds int              `mapstructure:"rate_limit_seconds"`
	TimeoutSeconds   int              `mapstructure:"timeout_seconds"`
	Webhook          WebhookSettings  `mapstructure:"webhook"`
	Email            EmailSettings    `mapstructure:"email"`
	Slack            SlackSettings    `mapstructure:"slack"`
	MQTT             MQTTSettings     `mapstructure:"mqtt"`
	Shoutrrr         ShoutrrrSettings `mapstructure:"shoutrrr"`
}

// Channel adapter kinds.
const (
	ChannelKindLog      = "log"
	ChannelKindWebhook  = "webhook"
	ChannelKindEmail    = "email"
	ChannelKindSlack    = "slack"
	ChannelKindMQTT     = "mqtt"
	ChannelKindShoutrrr = "shoutrrr"
)

// WebhookSettings configures the HTTP POST channel.
type WebhookSettings struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// EmailSettings configures the SMTP channel.
type EmailSettings struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	From     string   `mapstructure:"from"`
	Password string   `mapstructure:"password"`
	To       []string `mapstructure:"to"`
}

// SlackSettings configures the Slack channel.
type SlackSettings struct {
	Token   string `mapstructure:"token"`
	Channel string `mapstructure:"channel"`
}

// MQTTSettings configures the MQTT publish channel.
type MQTTSettings struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ShoutrrrSettings configures the shoutrrr push channel.
type ShoutrrrSettings struct {
	URLs []string `mapstructure:"urls"`
}

const (
	defaultMonitorInterval    = 60 * time.Second
	defaultEscalationInterval = 30 * time.Second
	defaultHistoryCapacity    = 1000
	defaultRetentionDays      = 30
	defaultListen             = ":8087"
	defaultDatabasePath       = "stormalert.db"
)

// Load reads configuration from the given file path. An empty path loads
// defaults plus environment overrides only (prefix STORMALERT, e.g.
// STORMALERT_HTTP_LISTEN).
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("log.level", "info")
	v.SetDefault("monitor.interval", defaultMonitorInterval.String())
	v.SetDefault("monitor.escalation_interval", defaultEscalationInterval.String())
	v.SetDefault("monitor.history_capacity", defaultHistoryCapacity)
	v.SetDefault("monitor.history_retention_days", defaultRetentionDays)
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("http.listen", defaultListen)
	v.SetDefault("sentry.enabled", false)

	v.SetEnvPrefix("STORMALERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings, viper.DecodeHook(StringToDurationHookFunc())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks structural constraints and fills zero values with defaults.
func (s *Settings) Validate() error {
	if s.Monitor.Interval <= 0 {
		s.Monitor.Interval = Duration(defaultMonitorInterval)
	}
	if s.Monitor.EscalationInterval <= 0 {
		s.Monitor.EscalationInterval = Duration(defaultEscalationInterval)
	}
	if s.Monitor.HistoryCapacity <= 0 {
		s.Monitor.HistoryCapacity = defaultHistoryCapacity
	}
	if s.Monitor.HistoryRetentionDays < 0 {
		return fmt.Errorf("monitor.history_retention_days must not be negative")
	}
	if s.HTTP.Listen == "" {
		s.HTTP.Listen = defaultListen
	}
	if s.Database.Path == "" {
		s.Database.Path = defaultDatabasePath
	}

	seen := make(map[string]struct{}, len(s.Channels))
	for i := range s.Channels {
		ch := &s.Channels[i]
		if ch.Name == "" {
			return fmt.Errorf("channel %d: name is required", i)
		}
		if _, dup := seen[ch.Name]; dup {
			return fmt.Errorf("channel %q: duplicate name", ch.Name)
		}
		seen[ch.Name] = struct{}{}
		switch ch.Kind {
		case ChannelKindLog, ChannelKindWebhook, ChannelKindEmail,
			ChannelKindSlack, ChannelKindMQTT, ChannelKindShoutrrr:
		default:
			return fmt.Errorf("channel %q: unknown kind %q", ch.Name, ch.Kind)
		}
		if ch.RateLimitSeconds < 0 {
			return fmt.Errorf("channel %q: rate_limit_seconds must not be negative", ch.Name)
		}
		if ch.TimeoutSeconds < 0 {
			return fmt.Errorf("channel %q: timeout_seconds must not be negative", ch.Name)
		}
	}
	return nil
}
