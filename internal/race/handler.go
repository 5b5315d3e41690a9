package race

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"raceday/internal/locale"
	"raceday/pkg/platform/httputil"
)

// Handler serves race listings and country display names.
type Handler struct {
	catalog *locale.Catalog
}

// NewHandler creates a race Handler.
func NewHandler(catalog *locale.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Register mounts the race routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/races", h.handleList)
	r.Get("/api/countries/{code}", h.handleCountry)
}

type raceResponse struct {
	Category   Category `json:"category"`
	Name       string   `json:"name"`
	DistanceKM float64  `json:"distance_km"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	l := h.catalog.Negotiate(r)
	// An explicit language choice sticks for later requests.
	if r.URL.Query().Has(locale.LangParam) {
		locale.SetCookie(w, l)
	}
	out := make([]raceResponse, 0, len(races))
	for _, race := range races {
		out = append(out, raceResponse{
			Category:   race.Category,
			Name:       h.catalog.Text(race.Name, l),
			DistanceKM: race.DistanceKM,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"locale": l, "races": out})
}

func (h *Handler) handleCountry(w http.ResponseWriter, r *http.Request) {
	l := h.catalog.Negotiate(r)
	code := chi.URLParam(r, "code")
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"code":  code,
		"name":  locale.CountryName(code, l),
		"known": locale.IsKnownCountry(code),
	})
}
