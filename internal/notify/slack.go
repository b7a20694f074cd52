package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/slack-go/slack"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
)

// SlackAdapter posts notifications to a Slack channel as colored
// attachments.
type SlackAdapter struct {
	name    string
	client  *slack.Client
	channel string
}

// NewSlackAdapter creates a Slack adapter for the given bot token and
// channel.
func NewSlackAdapter(name, token, channel string) *SlackAdapter {
	return &SlackAdapter{
		name:    name,
		client:  slack.New(token),
		channel: channel,
	}
}

func (a *SlackAdapter) Name() string { return a.name }

func (a *SlackAdapter) Send(ctx context.Context, p *alerting.Payload) error {
	attachment := slack.Attachment{
		Color: severityColor(p.Severity),
		Title: p.Title,
		Text:  p.Description,
		Fields: []slack.AttachmentField{
			{Title: "Rule", Value: p.RuleName, Short: true},
			{Title: "Severity", Value: string(p.Severity), Short: true},
			{Title: "Type", Value: string(p.Type), Short: true},
			{Title: "Status", Value: string(p.Status), Short: true},
		},
		Footer: "stormalert",
		Ts:     json.Number(strconv.FormatInt(p.Timestamp.Unix(), 10)),
	}
	_, _, err := a.client.PostMessageContext(ctx, a.channel,
		slack.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("slack post failed: %w", err)
	}
	return nil
}

func severityColor(s alerting.Severity) string {
	switch s {
	case alerting.SeverityInfo:
		return "#36a64f"
	case alerting.SeverityWarning:
		return "#ffcc00"
	case alerting.SeverityError:
		return "#ff6600"
	case alerting.SeverityCritical, alerting.SeverityEmergency:
		return "#ff0000"
	default:
		return "#808080"
	}
}
