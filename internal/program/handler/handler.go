package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"raceday/internal/locale"
	"raceday/internal/platform/middleware"
	"raceday/internal/program/models"
	"raceday/pkg/platform/httputil"
)

// Service defines the program read operations the handler needs.
type Service interface {
	Schedule(ctx context.Context, l locale.Locale) ([]models.LocalizedDay, error)
}

// Handler serves the program schedule.
type Handler struct {
	program Service
	catalog *locale.Catalog
	logger  *slog.Logger
}

// New creates a program Handler.
func New(program Service, catalog *locale.Catalog, logger *slog.Logger) *Handler {
	return &Handler{program: program, catalog: catalog, logger: logger}
}

// Register mounts the program routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/program", h.handleSchedule)
}

type scheduleResponse struct {
	Locale locale.Locale         `json:"locale"`
	Days   []models.LocalizedDay `json:"days"`
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.catalog.Negotiate(r)

	days, err := h.program.Schedule(ctx, l)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load program",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if days == nil {
		days = []models.LocalizedDay{}
	}
	httputil.WriteJSON(w, http.StatusOK, scheduleResponse{Locale: l, Days: days})
}
