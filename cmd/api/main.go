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

	"github.com/clearsmile/dental-assistant/backend/internal/config"
	"github.com/clearsmile/dental-assistant/backend/internal/handler"
	"github.com/clearsmile/dental-assistant/backend/internal/service/assistant"
	"github.com/clearsmile/dental-assistant/backend/internal/service/chat"
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

	chatService := chat.NewService()

	// Resolve model credentials once, up front. If they are missing the
	// assistant stays in not-ready mode and the chat endpoint reports it.
	var invoker assistant.Invoker
	if cfg.AI.Enabled() {
		arkInvoker, err := assistant.NewArkInvoker(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize model invoker: %v", err)
			log.Println("continuing without assistant functionality - check the ARK_* environment variables")
		} else {
			invoker = arkInvoker
			log.Println("assistant model invoker initialized successfully")
		}
	} else {
		log.Println("model credentials not configured, assistant will report not ready")
	}

	assistantService := assistant.NewService(invoker)

	router := handler.NewRouter(chatService, assistantService)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("dental assistant backend listening on %s", addr)
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
