package stream

import (
	"context"
	"fmt"
	"log"
	"net/http"

	chatservice "github.com/maumlab/counselbot/backend/internal/service/chat"
	"github.com/maumlab/counselbot/backend/internal/service/counsel"
	"github.com/maumlab/counselbot/backend/pkg/utils"
)

// Handler relays one user message and streams the reply via Server-Sent
// Events.
type Handler struct {
	controller *counsel.Controller
	chatSvc    *chatservice.Service
}

// New creates the stream handler.
func New(controller *counsel.Controller, chatSvc *chatservice.Service) *Handler {
	return &Handler{controller: controller, chatSvc: chatSvc}
}

// StreamResponse is one SSE frame.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Risk      bool   `json:"risk,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest runs one counseling turn over SSE. Fragments already
// flushed before a failure are display-only; the transcript is committed by
// the controller only on success.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
	})

	assistantTurn, err := h.controller.Submit(ctx, sessionID, userMessage, func(fragment string) {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "delta",
			SessionID: sessionID,
			Content:   fragment,
		})
	})
	if err != nil {
		h.sendSSE(w, flusher, StreamResponse{
			Event: "error",
			Error: err.Error(),
		})
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   assistantTurn.Content,
	})

	flagged, flagErr := h.chatSvc.RiskFlagged(ctx, sessionID)
	if flagErr == nil {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "risk",
			SessionID: sessionID,
			Risk:      flagged,
		})
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed turn session=%s", sessionID)
	return nil
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}
