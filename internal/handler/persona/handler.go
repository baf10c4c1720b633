package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maumlab/counselbot/backend/internal/model/persona"
	"github.com/maumlab/counselbot/backend/pkg/utils"
)

// Handler serves the persona catalog.
type Handler struct {
	personas persona.Store
}

// New creates the persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{personas: personas}
}

// RegisterRoutes registers persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

// handleListPersonas lists the configured personas, including their
// greeting, suggested replies and helpline contacts for the frontend.
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}
