// Package logmail delivers messages to a writer instead of a mail server. It
// is used for local development.
package logmail

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

type Sender struct {
	log *slog.Logger
	mu  sync.Mutex
	out io.Writer
}

func New(log *slog.Logger, out io.Writer) *Sender {
	return &Sender{
		log: log,
		out: out,
	}
}

func (s *Sender) Send(_ context.Context, to, subject, body string) error {
	const op = "mail.logmail.Send"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.out, "To: %s\nSubject: %s\n\n%s\n\n", to, subject, body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("mail written", slog.String("op", op), slog.String("to", to), slog.String("subject", subject))

	return nil
}
