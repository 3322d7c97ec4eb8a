package mailer

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"sync"

	"github.com/diskleads/leadmarket-backend/pkg/config"
)

// Sender delivers transactional mail. Implementations must be safe for
// concurrent use; the delivery watcher sends from its scan loop.
type Sender interface {
	Send(ctx context.Context, to string, subject string, htmlBody string) error
}

// Message is the assembled wire payload handed to the transport.
type Message struct {
	From    string
	To      string
	Subject string
	Body    []byte
}

// BuildMessage renders RFC 5322 headers plus an HTML body.
func BuildMessage(cfg config.SMTPConfig, to, subject, htmlBody string) Message {
	from := cfg.From
	display := from
	if cfg.FromName != "" {
		display = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", cfg.FromName), from)
	}

	var b strings.Builder
	b.WriteString("From: " + display + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	return Message{
		From:    from,
		To:      to,
		Subject: subject,
		Body:    []byte(b.String()),
	}
}

// NopSender satisfies Sender without delivering anything. Used when mail is
// disabled in local runs.
type NopSender struct{}

func (NopSender) Send(context.Context, string, string, string) error {
	return nil
}

// InMemorySender records messages for assertions in tests.
type InMemorySender struct {
	mu   sync.Mutex
	sent []Message
}

func NewInMemorySender() *InMemorySender {
	return &InMemorySender{}
}

func (s *InMemorySender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, Message{To: to, Subject: subject, Body: []byte(htmlBody)})
	return nil
}

// Sent returns a copy of the recorded messages.
func (s *InMemorySender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
