package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"raceday/internal/locale"
	"raceday/internal/race"
	"raceday/internal/registration/models"
	"raceday/pkg/email"
	"raceday/pkg/platform/sentinel"
)

type recordingTransport struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (t *recordingTransport) Send(_ context.Context, msg email.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, msg)
	return t.err
}

type blockingTransport struct{}

func (blockingTransport) Send(ctx context.Context, _ email.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

type panickingTransport struct{}

func (panickingTransport) Send(context.Context, email.Message) error {
	panic("boom")
}

type DispatcherSuite struct {
	suite.Suite
	templates *Templates
	metrics   *Metrics
	logger    *slog.Logger
	ctx       context.Context
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	tmpl, err := DefaultTemplates(locale.NewCatalog(locale.All...))
	s.Require().NoError(err)
	s.templates = tmpl
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ctx = context.Background()
}

func (s *DispatcherSuite) dispatcher(transport Transport, opts ...Option) *Dispatcher {
	opts = append([]Option{WithLogger(s.logger), WithMetrics(s.metrics)}, opts...)
	return NewDispatcher(s.templates, transport, "Race Office <registration@example.com>", opts...)
}

func (s *DispatcherSuite) TestSent() {
	transport := &recordingTransport{}

	outcome := s.dispatcher(transport).SendConfirmation(s.ctx, testRecord(race.Half), locale.Romanian)

	s.Equal(models.DispatchOutcome{Status: models.DispatchSent}, outcome)
	s.Require().Len(transport.sent, 1)
	msg := transport.sent[0]
	s.Equal("Înscriere confirmată la Semimaraton, Ana", msg.Subject)
	s.Equal(`"Ana Pop" <ana@example.com>`, msg.To)
	s.Equal("Race Office <registration@example.com>", msg.From)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Dispatched.WithLabelValues("sent", "")))
}

func (s *DispatcherSuite) TestFailures() {
	tests := []struct {
		name      string
		transport Transport
		reason    string
	}{
		{name: "no transport", transport: nil, reason: models.DispatchReasonTransportUnavailable},
		{name: "rejected credentials", transport: &recordingTransport{err: fmt.Errorf("401: %w", sentinel.ErrUnavailable)}, reason: models.DispatchReasonTransportUnavailable},
		{name: "provider error", transport: &recordingTransport{err: errors.New("500 internal")}, reason: models.DispatchReasonTransportError},
		{name: "panicking transport", transport: panickingTransport{}, reason: models.DispatchReasonTransportError},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			outcome := s.dispatcher(tt.transport).SendConfirmation(s.ctx, testRecord(race.Marathon), locale.English)
			s.Equal(models.DispatchOutcome{Status: models.DispatchFailed, Reason: tt.reason}, outcome)
		})
	}
}

func (s *DispatcherSuite) TestTimeout() {
	start := time.Now()

	outcome := s.dispatcher(blockingTransport{}, WithTimeout(20*time.Millisecond)).
		SendConfirmation(s.ctx, testRecord(race.K25), locale.French)

	s.Equal(models.DispatchOutcome{Status: models.DispatchFailed, Reason: models.DispatchReasonTimeout}, outcome)
	s.Less(time.Since(start), 5*time.Second)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Dispatched.WithLabelValues("failed", models.DispatchReasonTimeout)))
}

func (s *DispatcherSuite) TestTemplateError() {
	raw := `
categories:
  ultra:   {subject: {en: "{{.Nope}}"}, text: {en: "t"}, html: {en: "h"}}
  marathon: {subject: {en: "M"}, text: {en: "t"}, html: {en: "h"}}
  half:    {subject: {en: "H"}, text: {en: "t"}, html: {en: "h"}}
  25k:     {subject: {en: "25"}, text: {en: "t"}, html: {en: "h"}}
  10k:     {subject: {en: "10"}, text: {en: "t"}, html: {en: "h"}}
`
	tmpl, err := LoadTemplates([]byte(raw), locale.NewCatalog(locale.All...))
	s.Require().NoError(err)
	transport := &recordingTransport{}

	outcome := NewDispatcher(tmpl, transport, "a@example.com", WithLogger(s.logger)).
		SendConfirmation(s.ctx, testRecord(race.Ultra), locale.English)

	s.Equal(models.DispatchReasonTemplateError, outcome.Reason)
	s.Empty(transport.sent)
}

func (s *DispatcherSuite) TestSingleAttempt() {
	transport := &recordingTransport{err: errors.New("flaky")}

	s.dispatcher(transport).SendConfirmation(s.ctx, testRecord(race.K10), locale.German)

	s.Len(transport.sent, 1)
}
