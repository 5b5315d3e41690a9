package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"raceday/internal/locale"
	"raceday/internal/registration/models"
	"raceday/pkg/email"
	"raceday/pkg/platform/sentinel"
)

// DefaultTimeout bounds one send attempt.
const DefaultTimeout = 10 * time.Second

// Dispatcher sends registration confirmations. A send is attempted at most
// once per call and every failure is reported as an outcome, never as an
// error or panic.
type Dispatcher struct {
	templates *Templates
	transport Transport
	from      string
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds each send attempt.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher builds a dispatcher. A nil transport is valid: every attempt
// then fails with transport-unavailable.
func NewDispatcher(templates *Templates, transport Transport, from string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		templates: templates,
		transport: transport,
		from:      from,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendConfirmation composes the confirmation for rec in l and hands it to the
// transport.
func (d *Dispatcher) SendConfirmation(ctx context.Context, rec *models.Record, l locale.Locale) (outcome models.DispatchOutcome) {
	if rec == nil {
		return failed(models.DispatchReasonTemplateError)
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "confirmation dispatch panicked",
				"registration_id", rec.ID.String(),
				"panic", fmt.Sprint(r),
			)
			outcome = failed(models.DispatchReasonTransportError)
		}
		if d.metrics != nil {
			d.metrics.ObserveDispatch(outcome, start)
		}
	}()

	content, err := d.templates.Compose(rec, l)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to compose confirmation",
			"registration_id", rec.ID.String(),
			"race_category", rec.RaceCategory.String(),
			"locale", l.String(),
			"error", err,
		)
		return failed(models.DispatchReasonTemplateError)
	}

	if d.transport == nil {
		d.logger.WarnContext(ctx, "email transport not configured, confirmation not sent",
			"registration_id", rec.ID.String(),
		)
		return failed(models.DispatchReasonTransportUnavailable)
	}

	msg := email.Message{
		From:    d.from,
		To:      email.FormatAddress(rec.FirstName+" "+rec.LastName, rec.Email),
		Subject: content.Subject,
		Text:    content.Text,
		HTML:    content.HTML,
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err = d.transport.Send(sendCtx, msg)
	if err == nil {
		d.logger.InfoContext(ctx, "confirmation sent",
			"registration_id", rec.ID.String(),
			"locale", l.String(),
		)
		return models.DispatchOutcome{Status: models.DispatchSent}
	}

	reason := classify(sendCtx, err)
	d.logger.WarnContext(ctx, "confirmation not sent",
		"registration_id", rec.ID.String(),
		"reason", reason,
		"error", err,
	)
	return failed(reason)
}

func classify(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return models.DispatchReasonTimeout
	case errors.Is(err, sentinel.ErrUnavailable):
		return models.DispatchReasonTransportUnavailable
	default:
		return models.DispatchReasonTransportError
	}
}

func failed(reason string) models.DispatchOutcome {
	return models.DispatchOutcome{Status: models.DispatchFailed, Reason: reason}
}
