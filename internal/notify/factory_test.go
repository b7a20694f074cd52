package notify

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert1948/localstorm-sub001/internal/conf"
	"github.com/robert1948/localstorm-sub001/internal/logger"
)

func TestBuildChannel(t *testing.T) {
	t.Parallel()

	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)

	tests := []struct {
		name    string
		cfg     conf.ChannelConfig
		wantErr bool
	}{
		{
			name: "log channel",
			cfg:  conf.ChannelConfig{Name: "log", Kind: conf.ChannelKindLog, Enabled: true},
		},
		{
			name: "webhook channel",
			cfg: conf.ChannelConfig{
				Name: "hook", Kind: conf.ChannelKindWebhook, Enabled: true,
				RateLimitSeconds: 60, TimeoutSeconds: 5,
				Webhook: conf.WebhookSettings{URL: "https://example.com/hook"},
			},
		},
		{
			name:    "webhook without url",
			cfg:     conf.ChannelConfig{Name: "hook", Kind: conf.ChannelKindWebhook},
			wantErr: true,
		},
		{
			name: "email channel",
			cfg: conf.ChannelConfig{
				Name: "mail", Kind: conf.ChannelKindEmail,
				Email: conf.EmailSettings{Host: "smtp.example.com", Port: 587, From: "a@example.com", To: []string{"ops@example.com"}},
			},
		},
		{
			name: "slack channel",
			cfg: conf.ChannelConfig{
				Name: "slack", Kind: conf.ChannelKindSlack,
				Slack: conf.SlackSettings{Token: "xoxb-test", Channel: "#alerts"},
			},
		},
		{
			name: "mqtt channel",
			cfg: conf.ChannelConfig{
				Name: "mqtt", Kind: conf.ChannelKindMQTT,
				MQTT: conf.MQTTSettings{Broker: "tcp://localhost:1883", Topic: "alerts"},
			},
		},
		{
			name:    "shoutrrr without urls",
			cfg:     conf.ChannelConfig{Name: "push", Kind: conf.ChannelKindShoutrrr},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			cfg:     conf.ChannelConfig{Name: "x", Kind: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ch, err := BuildChannel(&tc.cfg, log)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cfg.Name, ch.Name)
			assert.Equal(t, tc.cfg.Enabled, ch.Enabled)
			assert.Equal(t, tc.cfg.RateLimitSeconds, ch.RateLimitSec)
			assert.Equal(t, time.Duration(tc.cfg.TimeoutSeconds)*time.Second, ch.Timeout)
			require.NotNil(t, ch.Adapter)
			assert.Equal(t, tc.cfg.Name, ch.Adapter.Name())
		})
	}
}
