package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/maumlab/counselbot/backend/internal/handler/chat"
	personaHandler "github.com/maumlab/counselbot/backend/internal/handler/persona"
	"github.com/maumlab/counselbot/backend/internal/handler/stream"
	"github.com/maumlab/counselbot/backend/internal/handler/ws"
	middlewarePkg "github.com/maumlab/counselbot/backend/internal/middleware"
	personaModel "github.com/maumlab/counselbot/backend/internal/model/persona"
	chatService "github.com/maumlab/counselbot/backend/internal/service/chat"
	"github.com/maumlab/counselbot/backend/internal/service/counsel"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, chatSvc *chatService.Service, controller *counsel.Controller) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaH := personaHandler.New(personas)
	chatH := chat.New(chatSvc, personas)
	streamH := stream.New(controller, chatSvc)
	wsH := ws.New(controller, chatSvc)

	r.Route("/api", func(api chi.Router) {
		personaH.RegisterRoutes(api)
		chatH.RegisterRoutes(api)
		wsH.RegisterRoutes(api)

		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			// Empty input is a valid turn; the controller forwards it as-is.
			userMessage := r.URL.Query().Get("message")

			if err := streamH.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				// Headers are already out; the SSE error frame carries the
				// failure to the client.
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	return r
}
