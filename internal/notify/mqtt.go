package notify

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
)

// MQTTAdapter publishes notifications as JSON to a broker topic so other
// systems can subscribe to the alert stream.
type MQTTAdapter struct {
	name   string
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTTAdapter creates an MQTT adapter. The connection is established
// lazily on first send.
func NewMQTTAdapter(name, broker, clientID, username, password, topic string) *MQTTAdapter {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(false)
	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}
	return &MQTTAdapter{
		name:   name,
		client: mqtt.NewClient(opts),
		topic:  topic,
		qos:    1,
	}
}

func (a *MQTTAdapter) Name() string { return a.name }

func (a *MQTTAdapter) Send(ctx context.Context, p *alerting.Payload) error {
	if !a.client.IsConnectionOpen() {
		if err := a.waitToken(ctx, a.client.Connect()); err != nil {
			return fmt.Errorf("mqtt connect failed: %w", err)
		}
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if err := a.waitToken(ctx, a.client.Publish(a.topic, a.qos, false, body)); err != nil {
		return fmt.Errorf("mqtt publish failed: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (a *MQTTAdapter) Close() {
	if a.client.IsConnectionOpen() {
		a.client.Disconnect(250)
	}
}

func (a *MQTTAdapter) waitToken(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
