package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearsmile/dental-assistant/backend/internal/analysis/intent"
	"github.com/clearsmile/dental-assistant/backend/internal/model/chat"
	assistantService "github.com/clearsmile/dental-assistant/backend/internal/service/assistant"
	chatService "github.com/clearsmile/dental-assistant/backend/internal/service/chat"
	"github.com/clearsmile/dental-assistant/backend/pkg/utils"
)

// Handler exposes chat sessions and assistant turns over HTTP.
type Handler struct {
	chatSvc   *chatService.Service
	assistant *assistantService.Service
}

// New creates the chat handler.
func New(chatSvc *chatService.Service, assistant *assistantService.Service) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		assistant: assistant,
	}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/session", h.handleCreateSession)
	r.Get("/chat/sessions/{sessionID}/messages", h.handleTranscript)
	r.Post("/chat/sessions/{sessionID}/messages", h.handleMessage)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID          string `json:"userId"`
		PatientID       string `json:"patientId"`
		TreatmentPlanID string `json:"treatmentPlanId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.UserID, payload.PatientID, payload.TreatmentPlanID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleMessage runs one assistant turn: snapshot the session context,
// process the message, then append both sides of the turn to history.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	chatCtx, err := h.chatSvc.BuildContext(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	resp, err := h.assistant.ProcessMessage(r.Context(), payload.Message, chatCtx)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, assistantService.ErrNotReady):
			status = http.StatusServiceUnavailable
		case errors.Is(err, assistantService.ErrMessageRequired):
			status = http.StatusBadRequest
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	userIntent := resp.Intent
	if userIntent == "" {
		userIntent = string(intent.Classify(payload.Message))
	}

	userTurn := chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Content:   payload.Message,
		Intent:    userIntent,
	}
	assistantTurn := chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   resp.Message,
	}

	if err := h.chatSvc.SaveMessage(r.Context(), userTurn); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.chatSvc.SaveMessage(r.Context(), assistantTurn); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}
