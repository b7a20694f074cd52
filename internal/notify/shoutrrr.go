package notify

import (
	"context"
	"fmt"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
)

// ShoutrrrAdapter routes notifications through shoutrrr service URLs
// (discord, telegram, ntfy, gotify, and friends), covering chat and push
// media with one adapter.
type ShoutrrrAdapter struct {
	name   string
	sender *router.ServiceRouter
}

// NewShoutrrrAdapter creates an adapter from one or more shoutrrr service
// URLs.
func NewShoutrrrAdapter(name string, urls []string) (*ShoutrrrAdapter, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("shoutrrr channel %q has no service URLs", name)
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("failed to create shoutrrr sender: %w", err)
	}
	return &ShoutrrrAdapter{name: name, sender: sender}, nil
}

func (a *ShoutrrrAdapter) Name() string { return a.name }

func (a *ShoutrrrAdapter) Send(ctx context.Context, p *alerting.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &types.Params{"title": fmt.Sprintf("[%s] %s", p.Severity, p.Title)}
	message := fmt.Sprintf("%s\nrule=%s type=%s status=%s", p.Description, p.RuleName, p.Type, p.Status)

	for _, err := range a.sender.Send(message, params) {
		if err != nil {
			return fmt.Errorf("shoutrrr send failed: %w", err)
		}
	}
	return nil
}
