package service

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"raceday/internal/locale"
	"raceday/internal/program/models"
	dErrors "raceday/pkg/domain-errors"
)

const scheduleCacheKey = "program:schedule"

// Store lists raw program events.
type Store interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// Service serves the grouped program schedule rendered for a locale.
// The grouped schedule is locale independent and cached; localization runs
// per request.
type Service struct {
	store    Store
	catalog  *locale.Catalog
	logger   *slog.Logger
	cacheTTL time.Duration
	cache    *gocache.Cache
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCacheTTL sets how long the grouped schedule is reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cacheTTL = ttl
	}
}

// New constructs a Service.
func New(store Store, catalog *locale.Catalog, opts ...Option) *Service {
	s := &Service{store: store, catalog: catalog, cacheTTL: 5 * time.Minute}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheTTL > 0 {
		s.cache = gocache.New(s.cacheTTL, 2*s.cacheTTL)
	}
	return s
}

// Schedule returns the program grouped by day and localized for l.
func (s *Service) Schedule(ctx context.Context, l locale.Locale) ([]models.LocalizedDay, error) {
	days, err := s.grouped(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.LocalizedDay, 0, len(days))
	for _, d := range days {
		ld := models.LocalizedDay{Date: d.Date, Events: make([]models.LocalizedEvent, 0, len(d.Events))}
		for _, e := range d.Events {
			ld.Events = append(ld.Events, models.LocalizedEvent{
				ID:          e.ID,
				StartTime:   e.StartTime,
				EndTime:     e.EndTime,
				Title:       s.catalog.Text(e.Title, l),
				Description: s.catalog.Text(e.Description, l),
			})
		}
		out = append(out, ld)
	}
	return out, nil
}

// Invalidate drops the cached schedule so the next read hits the store.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(scheduleCacheKey)
	}
}

func (s *Service) grouped(ctx context.Context) ([]models.Day, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(scheduleCacheKey); ok {
			if days, ok := cached.([]models.Day); ok {
				return days, nil
			}
		}
	}

	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load program")
	}
	days := models.Group(events)
	if s.cache != nil {
		s.cache.SetDefault(scheduleCacheKey, days)
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "program schedule loaded", "events", len(events), "days", len(days))
	}
	return days, nil
}
