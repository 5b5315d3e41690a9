package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"raceday/internal/locale"
	"raceday/internal/platform/middleware"
	"raceday/internal/race"
	"raceday/internal/registration/models"
	dErrors "raceday/pkg/domain-errors"
	"raceday/pkg/platform/httputil"
)

// maxBodyBytes caps a registration form submission.
const maxBodyBytes = 64 << 10

// warningConfirmationNotSent flags a stored registration whose email failed.
const warningConfirmationNotSent = "confirmation_not_sent"

// Service defines the registration operations the handler needs.
type Service interface {
	Register(ctx context.Context, input models.FormData, requestedLocale string) (models.Outcome, error)
	ResendConfirmation(ctx context.Context, id uuid.UUID, requestedLocale string) (*models.Record, models.DispatchOutcome, error)
}

// Handler serves the registration endpoints.
type Handler struct {
	registrations Service
	catalog       *locale.Catalog
	logger        *slog.Logger
}

// New creates a registration Handler.
func New(registrations Service, catalog *locale.Catalog, logger *slog.Logger) *Handler {
	return &Handler{registrations: registrations, catalog: catalog, logger: logger}
}

// Register mounts the registration routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/registrations", h.handleRegister)
	r.Post("/api/registrations/{id}/confirmation", h.handleResend)
}

type registrationView struct {
	ID                 uuid.UUID                 `json:"id"`
	FirstName          string                    `json:"firstName"`
	LastName           string                    `json:"lastName"`
	RaceCategory       race.Category             `json:"raceCategory"`
	BibNumber          *int                      `json:"bibNumber,omitempty"`
	Locale             locale.Locale             `json:"locale"`
	ConfirmationStatus models.ConfirmationStatus `json:"confirmationStatus"`
	CreatedAt          time.Time                 `json:"createdAt"`
}

type registrationResponse struct {
	Outcome      models.OutcomeKind      `json:"outcome"`
	Registration *registrationView       `json:"registration,omitempty"`
	Errors       models.ValidationErrors `json:"errors,omitempty"`
	Confirmation *models.DispatchOutcome `json:"confirmation,omitempty"`
	Warning      string                  `json:"warning,omitempty"`
}

type resendResponse struct {
	Registration registrationView       `json:"registration"`
	Confirmation models.DispatchOutcome `json:"confirmation"`
	Warning      string                 `json:"warning,omitempty"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	l := h.catalog.Negotiate(r)

	var input models.FormData
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.InfoContext(ctx, "invalid registration payload",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	outcome, err := h.registrations.Register(ctx, input, l.String())
	if err != nil {
		h.logError(ctx, "registration failed", err)
		httputil.WriteError(w, err)
		return
	}

	resp := registrationResponse{Outcome: outcome.Kind}
	switch outcome.Kind {
	case models.OutcomeRejected:
		resp.Errors = outcome.Errors
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, resp)
	case models.OutcomeAlreadyRegistered:
		resp.Registration = toView(outcome.Record)
		httputil.WriteJSON(w, http.StatusOK, resp)
	default:
		resp.Registration = toView(outcome.Record)
		resp.Confirmation = outcome.Dispatch
		if outcome.Dispatch != nil && !outcome.Dispatch.Sent() {
			resp.Warning = warningConfirmationNotSent
		}
		httputil.WriteJSON(w, http.StatusCreated, resp)
	}
}

func (h *Handler) handleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid registration id"))
		return
	}

	lang := r.URL.Query().Get(locale.LangParam)
	rec, dispatch, err := h.registrations.ResendConfirmation(ctx, id, lang)
	if err != nil {
		h.logError(ctx, "confirmation resend failed", err)
		httputil.WriteError(w, err)
		return
	}

	resp := resendResponse{Registration: *toView(rec), Confirmation: dispatch}
	if !dispatch.Sent() {
		resp.Warning = warningConfirmationNotSent
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	level := slog.LevelError
	if de, ok := dErrors.As(err); ok && de.Code != dErrors.CodeInternal {
		level = slog.LevelInfo
	}
	h.logger.Log(ctx, level, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err,
	)
}

func toView(rec *models.Record) *registrationView {
	if rec == nil {
		return nil
	}
	return &registrationView{
		ID:                 rec.ID,
		FirstName:          rec.FirstName,
		LastName:           rec.LastName,
		RaceCategory:       rec.RaceCategory,
		BibNumber:          rec.BibNumber,
		Locale:             rec.Locale,
		ConfirmationStatus: rec.ConfirmationStatus,
		CreatedAt:          rec.CreatedAt,
	}
}
