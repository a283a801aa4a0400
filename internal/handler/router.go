package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clearsmile/dental-assistant/backend/internal/handler/chat"
	middlewarePkg "github.com/clearsmile/dental-assistant/backend/internal/middleware"
	assistantService "github.com/clearsmile/dental-assistant/backend/internal/service/assistant"
	chatService "github.com/clearsmile/dental-assistant/backend/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, assistantSvc *assistantService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(chatSvc, assistantSvc)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
	})

	return r
}
