package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maumlab/counselbot/backend/internal/model/persona"
	chatservice "github.com/maumlab/counselbot/backend/internal/service/chat"
	"github.com/maumlab/counselbot/backend/pkg/utils"
)

// Handler serves session lifecycle and read-only transcript endpoints.
type Handler struct {
	chatSvc      *chatservice.Service
	personaStore persona.Store
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service, personaStore persona.Store) *Handler {
	return &Handler{
		chatSvc:      chatSvc,
		personaStore: personaStore,
	}
}

// RegisterRoutes registers session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/transcript", h.handleTranscript)
	r.Get("/session/{sessionID}/risk", h.handleRiskFlag)
	r.Get("/session/{sessionID}/summary", h.handleSummary)
}

// handleCreateSession provisions a session. The persona id may be omitted;
// the default counselor is used then. The greeting turn is part of the
// transcript from the moment the session exists.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}

	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	personaID := payload.PersonaID
	if personaID == "" {
		personaID = persona.DefaultID
	}

	p, ok := h.personaStore.FindByID(personaID)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "persona not found")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), p)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleTranscript returns the stored turns, optionally limited to the most
// recent N via ?limit=N.
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.RespondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	turns, err := h.chatSvc.Transcript(r.Context(), sessionID, limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, turns)
}

// handleRiskFlag exposes the sticky session risk flag.
func (h *Handler) handleRiskFlag(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	flagged, err := h.chatSvc.RiskFlagged(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"riskFlagged": flagged})
}

// handleSummary returns the plain-text counseling summary for download.
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	summary, err := h.chatSvc.Summary(r.Context(), sessionID, time.Now())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondText(w, http.StatusOK, summary)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatservice.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
