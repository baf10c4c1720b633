package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/maumlab/counselbot/backend/internal/config"
	"github.com/maumlab/counselbot/backend/internal/handler"
	"github.com/maumlab/counselbot/backend/internal/model/persona"
	"github.com/maumlab/counselbot/backend/internal/service/ai"
	"github.com/maumlab/counselbot/backend/internal/service/chat"
	"github.com/maumlab/counselbot/backend/internal/service/counsel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Missing credentials or model id is fatal: the service has no useful
	// mode without the completion endpoint.
	if err := cfg.AI.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	chatService := chat.NewService()

	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize completion client: %v", err)
	}
	log.Println("completion client initialized")

	controller := counsel.New(chatService, personaStore, aiService)

	router := handler.NewRouter(personaStore, chatService, controller)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("counselbot backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
