package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "raceday/internal/http"
	"raceday/internal/locale"
	"raceday/internal/notification"
	"raceday/internal/platform/config"
	"raceday/internal/platform/metrics"
	"raceday/internal/platform/postgres"
	redisclient "raceday/internal/platform/redis"
	"raceday/internal/platform/tracing"
	programhandler "raceday/internal/program/handler"
	programservice "raceday/internal/program/service"
	programstore "raceday/internal/program/store"
	"raceday/internal/race"
	"raceday/internal/registration/guard"
	registrationhandler "raceday/internal/registration/handler"
	registrationmetrics "raceday/internal/registration/metrics"
	registrationservice "raceday/internal/registration/service"
	registrationstore "raceday/internal/registration/store"
)

const (
	// guardCleanupInterval sweeps expired in-memory submission locks.
	guardCleanupInterval = time.Minute
	// requestTimeoutMargin leaves room for the store work around a dispatch.
	requestTimeoutMargin = 10 * time.Second
)

type app struct {
	Router         http.Handler
	Tracing        *tracing.Provider
	StorageKind    string
	RequestTimeout time.Duration
	Program        *programservice.Service
	db             *sql.DB
	redis          *redisclient.Client
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

type stores struct {
	registrations registrationservice.Store
	program       programservice.Store
}

func buildApp(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{RequestTimeout: cfg.Email.Timeout + requestTimeoutMargin}

	tp, err := tracing.NewProvider(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	a.Tracing = tp

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st, err := a.buildStores(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.redis, err = redisclient.New(ctx, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	var submissionGuard registrationservice.Guard = guard.NewInMemory(guardCleanupInterval)
	if a.redis != nil {
		submissionGuard = guard.NewRedis(a.redis.Client)
	}

	catalog := locale.NewCatalog(locale.All...)
	templates, err := notification.DefaultTemplates(catalog)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("confirmation templates: %w", err)
	}

	var transport notification.Transport
	if cfg.EmailEnabled() {
		transport = notification.NewAPITransport(cfg.Email.APIURL, cfg.Email.APIKey, &http.Client{Timeout: cfg.Email.Timeout})
	} else {
		log.Warn("EMAIL_API_KEY not set, confirmations will be recorded as not sent")
	}
	dispatcher := notification.NewDispatcher(templates, transport, cfg.Email.From,
		notification.WithTimeout(cfg.Email.Timeout),
		notification.WithLogger(log),
		notification.WithMetrics(notification.NewMetrics(reg)),
	)

	registrations := registrationservice.New(st.registrations, dispatcher, catalog,
		registrationservice.WithLogger(log),
		registrationservice.WithMetrics(registrationmetrics.New(reg)),
		registrationservice.WithTracer(tp.Tracer()),
		registrationservice.WithGuard(submissionGuard, cfg.Registration.SubmissionGuardTTL),
	)
	program := programservice.New(st.program, catalog,
		programservice.WithLogger(log),
		programservice.WithCacheTTL(cfg.Program.CacheTTL),
	)
	a.Program = program

	checks := map[string]httpapi.HealthCheck{}
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}

	a.Router = httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        metrics.New(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RequestTimeout: a.RequestTimeout,
		HealthChecks:   checks,
		Handlers: []httpapi.Registrar{
			registrationhandler.New(registrations, catalog, log),
			programhandler.New(program, catalog, log),
			race.NewHandler(catalog),
		},
	})
	return a, nil
}

// buildStores selects Postgres when DATABASE_URL is set and the in-memory
// stores otherwise.
func (a *app) buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (stores, error) {
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return stores{}, fmt.Errorf("postgres: %w", err)
	}
	if db == nil {
		a.StorageKind = "memory"
		program, err := programstore.NewInMemory(programstore.DefaultProgram()...)
		if err != nil {
			return stores{}, fmt.Errorf("program: %w", err)
		}
		return stores{registrations: registrationstore.NewInMemory(), program: program}, nil
	}

	a.db = db
	a.StorageKind = "postgres"
	if cfg.Database.Migrate {
		if err := postgres.Migrate(db); err != nil {
			return stores{}, fmt.Errorf("migrate: %w", err)
		}
	}
	program := programstore.NewPostgres(db)
	seeded, err := program.SeedIfEmpty(ctx, programstore.DefaultProgram())
	if err != nil {
		return stores{}, fmt.Errorf("seed program: %w", err)
	}
	if seeded {
		log.Info("seeded default race program")
	}
	return stores{registrations: registrationstore.NewPostgres(db), program: program}, nil
}
