package report

import (
	"context"
	"log"
	"net/mail"
	"time"

	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
	"github.com/stadiumfit/scorecard/pkg/entity"
)

const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message"`
}

type Service struct {
	transport Transport
	from      string
	now       func() time.Time
}

func NewService(transport Transport, from string) *Service {
	if transport == nil {
		log.Fatal("on report service provided nil transport")
	}
	return &Service{
		transport: transport,
		from:      from,
		now:       time.Now,
	}
}

// Send validates the address syntax, renders the payload in the requested
// format and dispatches it. Failures surface once; there is no retry.
func (s *Service) Send(ctx context.Context, to, format string, data *entity.ReportData) (*SendResult, error) {
	if _, err := mail.ParseAddress(to); err != nil {
		return nil, errorvalues.ErrInvalidEmail
	}
	now := s.now()
	msg := &Message{
		To:      to,
		From:    s.from,
		Subject: "KPI Performance Report (" + data.DateRange + ")",
	}
	switch format {
	case FormatCSV:
		msg.Body = RenderCSV(data, now)
	case FormatPDF:
		body, err := RenderHTML(data, now)
		if err != nil {
			return nil, err
		}
		msg.Body = body
		msg.HTML = true
	default:
		return nil, errorvalues.ErrUnsupportedFormat
	}
	id, err := s.transport.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	return &SendResult{
		Success:   true,
		MessageID: id,
		Message:   "report sent to " + to,
	}, nil
}
