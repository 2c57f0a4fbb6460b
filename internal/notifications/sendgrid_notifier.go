package notifications

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// BaseURL overrides the mail send endpoint.
	BaseURL string
}

type SendGridNotifier struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridNotifier(cfg SendGridConfig) *SendGridNotifier {
	if cfg.FromName == "" {
		cfg.FromName = "LearnHub"
	}

	client := sendgrid.NewSendClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		client.Request.BaseURL = cfg.BaseURL
	}

	return &SendGridNotifier{
		client: client,
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
	}
}

func (n *SendGridNotifier) SendEnrollmentWelcome(ctx context.Context, in EnrollmentWelcomeInput) error {
	to := mail.NewEmail(in.Name, in.Email)
	body := welcomeBody(in)
	htmlBody := "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>") + "</p>"
	msg := mail.NewSingleEmail(n.from, welcomeSubject(in), to, body, htmlBody)

	resp, err := n.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}

	// 202 on success
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}
