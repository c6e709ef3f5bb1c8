package report_test

import (
	"context"
	"strings"
	"testing"
	"time"

	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
	"github.com/stadiumfit/scorecard/internal/report"
	"github.com/stretchr/testify/assert"
)

// capturingTransport records the last dispatched message.
type capturingTransport struct {
	last *report.Message
	err  error
}

func (ct *capturingTransport) Send(ctx context.Context, msg *report.Message) (string, error) {
	if ct.err != nil {
		return "", ct.err
	}
	ct.last = msg
	return "test-id", nil
}

func TestServiceSend(t *testing.T) {
	ctx := context.Background()
	t.Run("csv body is plain text", func(t *testing.T) {
		transport := &capturingTransport{}
		svc := report.NewService(transport, "reports@stadiumfitness.com")
		result, err := svc.Send(ctx, "manager@stadiumfitness.com", report.FormatCSV, sampleReportData())
		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "test-id", result.MessageID)
		assert.Contains(t, result.Message, "manager@stadiumfitness.com")
		assert.False(t, transport.last.HTML)
		assert.True(t, strings.HasPrefix(transport.last.Body, "KPI Performance Report"))
		assert.Equal(t, "KPI Performance Report (2026-08-01 to 2026-08-31)", transport.last.Subject)
	})
	t.Run("pdf format renders html", func(t *testing.T) {
		transport := &capturingTransport{}
		svc := report.NewService(transport, "reports@stadiumfitness.com")
		_, err := svc.Send(ctx, "manager@stadiumfitness.com", report.FormatPDF, sampleReportData())
		assert.NoError(t, err)
		assert.True(t, transport.last.HTML)
		assert.Contains(t, transport.last.Body, "<h1>KPI Performance Report</h1>")
	})
	t.Run("invalid address", func(t *testing.T) {
		svc := report.NewService(&capturingTransport{}, "reports@stadiumfitness.com")
		_, err := svc.Send(ctx, "not-an-address", report.FormatCSV, sampleReportData())
		assert.ErrorIs(t, err, errorvalues.ErrInvalidEmail)
	})
	t.Run("unsupported format", func(t *testing.T) {
		svc := report.NewService(&capturingTransport{}, "reports@stadiumfitness.com")
		_, err := svc.Send(ctx, "manager@stadiumfitness.com", "xlsx", sampleReportData())
		assert.ErrorIs(t, err, errorvalues.ErrUnsupportedFormat)
	})
	t.Run("transport failure surfaces", func(t *testing.T) {
		transport := &capturingTransport{err: errorvalues.ErrTransportNotConfigured}
		svc := report.NewService(transport, "reports@stadiumfitness.com")
		_, err := svc.Send(ctx, "manager@stadiumfitness.com", report.FormatCSV, sampleReportData())
		assert.ErrorIs(t, err, errorvalues.ErrTransportNotConfigured)
	})
}

func TestMockTransport(t *testing.T) {
	t.Run("succeeds with a mock id", func(t *testing.T) {
		mt := &report.MockTransport{}
		id, err := mt.Send(context.Background(), &report.Message{To: "a@b.com"})
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(id, "mock-"))
	})
	t.Run("cancelled context aborts the delay", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		mt := &report.MockTransport{Delay: time.Second}
		_, err := mt.Send(ctx, &report.Message{To: "a@b.com"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSMTPTransportUnconfigured(t *testing.T) {
	st := report.NewSMTPTransport("", 587, "", "", "")
	_, err := st.Send(context.Background(), &report.Message{To: "a@b.com"})
	assert.ErrorIs(t, err, errorvalues.ErrTransportNotConfigured)
}
