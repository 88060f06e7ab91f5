package sendgrid

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Sender struct {
	client  *sendgrid.Client
	from    *mail.Email
	timeout time.Duration
}

func New(apiKey, fromName, fromAddress string, timeout time.Duration) *Sender {
	return &Sender{
		client:  sendgrid.NewSendClient(apiKey),
		from:    mail.NewEmail(fromName, fromAddress),
		timeout: timeout,
	}
}

func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	const op = "mail.sendgrid.Send"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	htmlBody := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", to), body, htmlBody)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, resp.Body)
	}

	return nil
}
