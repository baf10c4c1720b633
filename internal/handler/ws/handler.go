package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatservice "github.com/maumlab/counselbot/backend/internal/service/chat"
	"github.com/maumlab/counselbot/backend/internal/service/counsel"
)

// Handler provides a duplex chat transport: the client sends chat frames and
// receives the reply fragments pushed back over the same connection.
type Handler struct {
	controller *counsel.Controller
	chatSvc    *chatservice.Service
	upgrader   websocket.Upgrader
}

// New creates the websocket handler.
func New(controller *counsel.Controller, chatSvc *chatservice.Service) *Handler {
	return &Handler{
		controller: controller,
		chatSvc:    chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Content   string `json:"content,omitempty"`
	Risk      bool   `json:"risk,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// handleWebSocket upgrades the connection and serves counseling turns until
// the client disconnects. Turns are processed strictly one at a time; the
// read loop does not pick up the next frame until the current turn finished.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection opened session=%s", sessionID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read error session=%s: %v", sessionID, err)
			}
			return
		}

		var inbound inboundMessage
		if err := json.Unmarshal(raw, &inbound); err != nil {
			h.send(conn, outgoingMessage{Type: "error", Error: "invalid message"})
			continue
		}

		if inbound.Type != "chat" {
			h.send(conn, outgoingMessage{Type: "error", Error: "unsupported message type"})
			continue
		}

		h.runTurn(r, conn, sessionID, inbound.Text)
	}
}

func (h *Handler) runTurn(r *http.Request, conn *websocket.Conn, sessionID, text string) {
	ctx := r.Context()

	assistantTurn, err := h.controller.Submit(ctx, sessionID, text, func(fragment string) {
		h.send(conn, outgoingMessage{
			Type:      "delta",
			SessionID: sessionID,
			Content:   fragment,
		})
	})
	if err != nil {
		h.send(conn, outgoingMessage{Type: "error", SessionID: sessionID, Error: err.Error()})
		return
	}

	// The committed reply goes out whole after the deltas, so clients that
	// skip incremental rendering still get the final text.
	h.send(conn, outgoingMessage{
		Type:      "message",
		SessionID: sessionID,
		Content:   assistantTurn.Content,
	})

	if flagged, flagErr := h.chatSvc.RiskFlagged(ctx, sessionID); flagErr == nil {
		h.send(conn, outgoingMessage{Type: "risk", SessionID: sessionID, Risk: flagged})
	}

	h.send(conn, outgoingMessage{Type: "end", SessionID: sessionID})
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
