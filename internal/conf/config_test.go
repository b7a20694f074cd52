package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", settings.Log.Level)
	assert.Equal(t, 60*time.Second, settings.Monitor.Interval.Std())
	assert.Equal(t, 30*time.Second, settings.Monitor.EscalationInterval.Std())
	assert.Equal(t, 1000, settings.Monitor.HistoryCapacity)
	assert.Equal(t, 30, settings.Monitor.HistoryRetentionDays)
	assert.Equal(t, ":8087", settings.HTTP.Listen)
	assert.Equal(t, "stormalert.db", settings.Database.Path)
	assert.False(t, settings.Sentry.Enabled)
	assert.Empty(t, settings.Channels)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
monitor:
  interval: 15s
  escalation_interval: 10s
  history_capacity: 50
http:
  listen: ":9000"
database:
  path: /tmp/alerts.db
channels:
  - name: ops-webhook
    kind: webhook
    enabled: true
    rate_limit_seconds: 120
    webhook:
      url: https://example.com/hook
      headers:
        Authorization: Bearer abc
  - name: log
    kind: log
    enabled: true
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", settings.Log.Level)
	assert.Equal(t, 15*time.Second, settings.Monitor.Interval.Std())
	assert.Equal(t, 10*time.Second, settings.Monitor.EscalationInterval.Std())
	assert.Equal(t, 50, settings.Monitor.HistoryCapacity)
	assert.Equal(t, ":9000", settings.HTTP.Listen)
	assert.Equal(t, "/tmp/alerts.db", settings.Database.Path)

	require.Len(t, settings.Channels, 2)
	ch := settings.Channels[0]
	assert.Equal(t, "ops-webhook", ch.Name)
	assert.Equal(t, ChannelKindWebhook, ch.Kind)
	assert.Equal(t, 120, ch.RateLimitSeconds)
	assert.Equal(t, "https://example.com/hook", ch.Webhook.URL)
	assert.Equal(t, "Bearer abc", ch.Webhook.Headers["Authorization"])
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STORMALERT_LOG_LEVEL", "warn")
	t.Setenv("STORMALERT_HTTP_LISTEN", ":7777")

	settings, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", settings.Log.Level)
	assert.Equal(t, ":7777", settings.HTTP.Listen)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{
			name: "negative retention",
			mutate: func(s *Settings) {
				s.Monitor.HistoryRetentionDays = -1
			},
		},
		{
			name: "channel without name",
			mutate: func(s *Settings) {
				s.Channels = []ChannelConfig{{Kind: ChannelKindLog}}
			},
		},
		{
			name: "duplicate channel names",
			mutate: func(s *Settings) {
				s.Channels = []ChannelConfig{
					{Name: "log", Kind: ChannelKindLog},
					{Name: "log", Kind: ChannelKindWebhook},
				}
			},
		},
		{
			name: "unknown channel kind",
			mutate: func(s *Settings) {
				s.Channels = []ChannelConfig{{Name: "x", Kind: "pigeon"}}
			},
		},
		{
			name: "negative rate limit",
			mutate: func(s *Settings) {
				s.Channels = []ChannelConfig{{Name: "x", Kind: ChannelKindLog, RateLimitSeconds: -1}}
			},
		},
		{
			name: "negative timeout",
			mutate: func(s *Settings) {
				s.Channels = []ChannelConfig{{Name: "x", Kind: ChannelKindLog, TimeoutSeconds: -5}}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var s Settings
			tc.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	t.Parallel()

	var s Settings
	require.NoError(t, s.Validate())
	assert.Equal(t, 60*time.Second, s.Monitor.Interval.Std())
	assert.Equal(t, 30*time.Second, s.Monitor.EscalationInterval.Std())
	assert.Equal(t, 1000, s.Monitor.HistoryCapacity)
	assert.Equal(t, ":8087", s.HTTP.Listen)
	assert.Equal(t, "stormalert.db", s.Database.Path)
}
