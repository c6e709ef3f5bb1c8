package report

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/jordan-wright/email"
	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
)

type Message struct {
	To      string
	From    string
	Subject string
	Body    string
	HTML    bool
}

// Transport dispatches a rendered report. Implementations return an opaque
// message id on success. No transport retries on its own.
type Transport interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// MockTransport always succeeds after a simulated delay.
type MockTransport struct {
	Delay time.Duration
}

func (mt *MockTransport) Send(ctx context.Context, msg *Message) (string, error) {
	if mt.Delay > 0 {
		select {
		case <-time.After(mt.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "mock-" + uuid.NewString(), nil
}

// SMTPTransport sends through a real SMTP server. Selecting it without host
// and sender configured fails loudly with ErrTransportNotConfigured.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPTransport(host string, port int, username, password, from string) *SMTPTransport {
	return &SMTPTransport{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (st *SMTPTransport) Send(ctx context.Context, msg *Message) (string, error) {
	if st.host == "" || st.from == "" {
		return "", errorvalues.ErrTransportNotConfigured
	}
	e := email.NewEmail()
	e.From = st.from
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	if msg.HTML {
		e.HTML = []byte(msg.Body)
	} else {
		e.Text = []byte(msg.Body)
	}
	auth := smtp.PlainAuth("", st.username, st.password, st.host)
	if err := e.Send(fmt.Sprintf("%s:%d", st.host, st.port), auth); err != nil {
		return "", fmt.Errorf("smtp transport: send: %w", err)
	}
	return "smtp-" + uuid.NewString(), nil
}
