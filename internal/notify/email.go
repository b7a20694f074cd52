package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/robert1948/localstorm-sub001/internal/alerting"
)

// EmailAdapter sends notifications over SMTP to one or more recipients.
type EmailAdapter struct {
	name   string
	dialer *gomail.Dialer
	from   string
	to     []string
}

// NewEmailAdapter creates an SMTP adapter.
func NewEmailAdapter(name, host string, port int, from, password string, to []string) *EmailAdapter {
	return &EmailAdapter{
		name:   name,
		dialer: gomail.NewDialer(host, port, from, password),
		from:   from,
		to:     to,
	}
}

func (a *EmailAdapter) Name() string { return a.name }

// Send delivers the payload as a plain-text email. The SMTP exchange runs
// in a goroutine so the context deadline is honored; gomail itself does not
// take a context.
func (a *EmailAdapter) Send(ctx context.Context, p *alerting.Payload) error {
	if len(a.to) == 0 {
		return fmt.Errorf("email channel %q has no recipients", a.name)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", a.from)
	m.SetHeader("To", a.to...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] %s", strings.ToUpper(string(p.Severity)), p.Title))
	m.SetBody("text/plain", emailBody(p))

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.dialer.DialAndSend(m)
	}()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func emailBody(p *alerting.Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Alert:       %s\n", p.Title)
	fmt.Fprintf(&b, "Rule:        %s\n", p.RuleName)
	fmt.Fprintf(&b, "Severity:    %s\n", p.Severity)
	fmt.Fprintf(&b, "Type:        %s\n", p.Type)
	fmt.Fprintf(&b, "Status:      %s\n", p.Status)
	fmt.Fprintf(&b, "Time:        %s\n", p.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "\n%s\n", p.Description)
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(p.Tags, ", "))
	}
	return b.String()
}
