// Package service orchestrates a registration: validation, idempotent
// persistence, confirmation dispatch and status write-back.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"raceday/internal/locale"
	"raceday/internal/race"
	"raceday/internal/registration/guard"
	"raceday/internal/registration/metrics"
	"raceday/internal/registration/models"
	"raceday/internal/registration/validator"
	dErrors "raceday/pkg/domain-errors"
	"raceday/pkg/platform/sentinel"
	"raceday/pkg/requestcontext"
)

// DefaultGuardTTL bounds how long one submission holds the guard.
const DefaultGuardTTL = 30 * time.Second

// Store persists registrations.
type Store interface {
	Insert(ctx context.Context, valid models.ValidRegistration, l locale.Locale, now time.Time) (*models.Record, error)
	FindByEmailAndCategory(ctx context.Context, email string, category race.Category) (*models.Record, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Record, error)
	UpdateConfirmationStatus(ctx context.Context, id uuid.UUID, status models.ConfirmationStatus, now time.Time) error
}

// Dispatcher sends confirmation emails. It reports failures as outcomes.
type Dispatcher interface {
	SendConfirmation(ctx context.Context, rec *models.Record, l locale.Locale) models.DispatchOutcome
}

// Guard marks an identical submission as in flight across requests. Release
// only drops a lock still owned by token.
type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	Release(ctx context.Context, key, token string) error
}

// Service runs the registration workflow. It holds no mutable state of its
// own; bib allocation is the store's concern.
type Service struct {
	store      Store
	dispatcher Dispatcher
	catalog    *locale.Catalog
	guard      Guard
	guardTTL   time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithGuard enables the submission guard. ttl bounds a stuck holder.
func WithGuard(g Guard, ttl time.Duration) Option {
	return func(s *Service) {
		s.guard = g
		if ttl > 0 {
			s.guardTTL = ttl
		}
	}
}

// New constructs a Service.
func New(store Store, dispatcher Dispatcher, catalog *locale.Catalog, opts ...Option) *Service {
	s := &Service{
		store:      store,
		dispatcher: dispatcher,
		catalog:    catalog,
		guardTTL:   DefaultGuardTTL,
		logger:     slog.Default(),
		tracer:     noop.NewTracerProvider().Tracer("raceday/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates input and persists it unless the (email, category) pair
// is already registered, then attempts one confirmation send. Validation
// failures and duplicates are outcomes; only store failures are errors.
func (s *Service) Register(ctx context.Context, input models.FormData, requestedLocale string) (outcome models.Outcome, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registration.Register", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() {
		s.finish(span, outcome, err, start)
	}()

	l := s.catalog.Resolve(requestedLocale)
	now := requestcontext.Now(ctx)
	span.SetAttributes(attribute.String("registration.locale", l.String()))

	valid, errs := validator.Validate(input, now)
	if len(errs) > 0 {
		s.logger.InfoContext(ctx, "registration rejected",
			"errors", len(errs),
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.Rejected(errs), nil
	}
	span.SetAttributes(attribute.String("registration.category", valid.RaceCategory.String()))

	if s.guard != nil {
		key := guard.Key(valid.Email, valid.RaceCategory)
		token, acquired, gerr := s.guard.Acquire(ctx, key, s.guardTTL)
		switch {
		case gerr != nil:
			s.metrics.IncrementGuard("error")
			s.logger.WarnContext(ctx, "submission guard unavailable, continuing without it", "error", gerr)
		case !acquired:
			// The holder may not have stored its record yet. The unique
			// (email, category) insert settles which submission wins.
			s.metrics.IncrementGuard("contended")
		default:
			s.metrics.IncrementGuard("acquired")
			defer func() {
				if rerr := s.guard.Release(context.WithoutCancel(ctx), key, token); rerr != nil {
					s.logger.WarnContext(ctx, "failed to release submission guard", "error", rerr)
				}
			}()
		}
	}

	existing, err := s.store.FindByEmailAndCategory(ctx, valid.Email, valid.RaceCategory)
	switch {
	case err == nil:
		return models.AlreadyRegistered(existing), nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return models.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up registration")
	}

	rec, err := s.store.Insert(ctx, valid, l, now)
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		// Lost a race with a concurrent identical submission.
		existing, ferr := s.store.FindByEmailAndCategory(ctx, valid.Email, valid.RaceCategory)
		if ferr != nil {
			return models.Outcome{}, dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to load concurrent registration")
		}
		return models.AlreadyRegistered(existing), nil
	}
	if err != nil {
		return models.Outcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registration")
	}

	s.logger.InfoContext(ctx, "registration saved",
		"registration_id", rec.ID.String(),
		"race_category", rec.RaceCategory.String(),
		"bib_number", bibValue(rec),
		"request_id", requestcontext.RequestID(ctx),
	)

	dispatch := s.confirm(ctx, rec, l)
	return models.Registered(rec, dispatch), nil
}

// ResendConfirmation retries the confirmation email for a registration that
// has not been confirmed yet. A record already marked sent is returned
// unchanged without sending again.
func (s *Service) ResendConfirmation(ctx context.Context, id uuid.UUID, requestedLocale string) (*models.Record, models.DispatchOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "registration.ResendConfirmation")
	defer span.End()

	rec, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, models.DispatchOutcome{}, dErrors.New(dErrors.CodeNotFound, "registration not found")
	}
	if err != nil {
		span.RecordError(err)
		return nil, models.DispatchOutcome{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	if rec.ConfirmationStatus == models.ConfirmationSent {
		return rec, models.DispatchOutcome{Status: models.DispatchSent}, nil
	}
	if !rec.TermsAccepted {
		return nil, models.DispatchOutcome{}, dErrors.New(dErrors.CodeInvariantViolation, "registration has not accepted the terms")
	}

	l := rec.Locale
	if requestedLocale != "" {
		l = s.catalog.Resolve(requestedLocale)
	}
	dispatch := s.confirm(ctx, rec, l)
	return rec, dispatch, nil
}

// confirm sends the confirmation and writes the result back onto rec. A
// failed write-back is logged; the registration stands.
func (s *Service) confirm(ctx context.Context, rec *models.Record, l locale.Locale) models.DispatchOutcome {
	dispatch := s.dispatcher.SendConfirmation(ctx, rec, l)
	status := dispatch.ConfirmationStatus()
	now := requestcontext.Now(ctx)

	if err := rec.CanApplyConfirmation(status); err != nil {
		s.logger.ErrorContext(ctx, "confirmation status rejected",
			"registration_id", rec.ID.String(),
			"status", string(status),
			"error", err,
		)
		return dispatch
	}
	if err := s.store.UpdateConfirmationStatus(context.WithoutCancel(ctx), rec.ID, status, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to record confirmation status",
			"registration_id", rec.ID.String(),
			"status", string(status),
			"error", err,
		)
		return dispatch
	}
	rec.ApplyConfirmation(status, now)
	s.metrics.IncrementConfirmation(string(status))
	return dispatch
}

func (s *Service) finish(span trace.Span, outcome models.Outcome, err error, start time.Time) {
	defer span.End()

	category := ""
	if outcome.Record != nil {
		category = outcome.Record.RaceCategory.String()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.IncrementOutcome("error", category)
	} else {
		span.SetAttributes(attribute.String("registration.outcome", string(outcome.Kind)))
		if outcome.Dispatch != nil {
			span.SetAttributes(attribute.String("registration.dispatch", string(outcome.Dispatch.Status)))
		}
		span.SetStatus(codes.Ok, "")
		s.metrics.IncrementOutcome(string(outcome.Kind), category)
	}
	s.metrics.ObserveRegisterLatency(time.Since(start))
}

func bibValue(rec *models.Record) int {
	if rec.BibNumber == nil {
		return 0
	}
	return *rec.BibNumber
}
