package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	model "github.com/clearsmile/dental-assistant/backend/internal/model/chat"
	assistantservice "github.com/clearsmile/dental-assistant/backend/internal/service/assistant"
	chatservice "github.com/clearsmile/dental-assistant/backend/internal/service/chat"
)

type stubInvoker struct {
	content string
	err     error
}

func (s *stubInvoker) Invoke(context.Context, string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return json.Marshal(map[string]string{"role": "assistant", "content": s.content})
}

func setupRouter(invoker assistantservice.Invoker) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService()
	handler := New(chatSvc, assistantservice.NewService(invoker))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func createSession(t *testing.T, r *chi.Mux) model.Session {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"userId": "user-1", "patientId": "pat-5"})
	req := httptest.NewRequest(http.MethodPost, "/chat/session", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var session model.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session
}

func TestCreateSessionMissingUserID(t *testing.T) {
	r, _ := setupRouter(&stubInvoker{content: "hi"})
	payload := []byte(`{}`)

	req := httptest.NewRequest(http.MethodPost, "/chat/session", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestMessageTurn(t *testing.T) {
	r, chatSvc := setupRouter(&stubInvoker{content: "Intent: treatment_explanation\nA filling seals the cavity."})
	session := createSession(t, r)

	payload, _ := json.Marshal(map[string]string{"message": "What does a filling do?"})
	req := httptest.NewRequest(http.MethodPost, "/chat/sessions/"+session.ID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var chatResp model.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &chatResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if chatResp.Message != "A filling seals the cavity." {
		t.Fatalf("unexpected message: %q", chatResp.Message)
	}
	if chatResp.Intent != "treatment_explanation" {
		t.Fatalf("unexpected intent: %q", chatResp.Intent)
	}

	transcript, err := chatSvc.LoadTranscript(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(transcript) != 2 {
		t.Fatalf("expected both turns appended, got %d messages", len(transcript))
	}
	if transcript[0].Role != model.RoleUser || transcript[1].Role != model.RoleAssistant {
		t.Fatalf("turns stored in wrong order: %s then %s", transcript[0].Role, transcript[1].Role)
	}
	if transcript[0].Intent != "treatment_explanation" {
		t.Fatalf("user turn should carry the detected intent, got %q", transcript[0].Intent)
	}
}

func TestMessageTurnTagsHeuristicIntent(t *testing.T) {
	// Reply with no Intent line: the stored user turn falls back to the
	// keyword classifier.
	r, chatSvc := setupRouter(&stubInvoker{content: "You can reach us during office hours."})
	session := createSession(t, r)

	payload, _ := json.Marshal(map[string]string{"message": "Can I book an appointment tomorrow?"})
	req := httptest.NewRequest(http.MethodPost, "/chat/sessions/"+session.ID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var chatResp model.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &chatResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if chatResp.Intent != "" {
		t.Fatalf("response intent must stay absent when the model gave none, got %q", chatResp.Intent)
	}

	transcript, err := chatSvc.LoadTranscript(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if transcript[0].Intent != "appointment_scheduling" {
		t.Fatalf("expected heuristic intent on stored turn, got %q", transcript[0].Intent)
	}
}

func TestMessageTurnUnknownSession(t *testing.T) {
	r, _ := setupRouter(&stubInvoker{content: "hi"})

	payload, _ := json.Marshal(map[string]string{"message": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/chat/sessions/missing/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestMessageTurnAssistantNotReady(t *testing.T) {
	r, _ := setupRouter(nil)
	session := createSession(t, r)

	payload, _ := json.Marshal(map[string]string{"message": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/chat/sessions/"+session.ID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestMessageTurnModelFailure(t *testing.T) {
	r, chatSvc := setupRouter(&stubInvoker{err: errors.New("network down")})
	session := createSession(t, r)

	payload, _ := json.Marshal(map[string]string{"message": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/chat/sessions/"+session.ID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	// A failed turn must leave no partial history behind.
	transcript, err := chatSvc.LoadTranscript(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("LoadTranscript err: %v", err)
	}
	if len(transcript) != 0 {
		t.Fatalf("expected empty transcript after failure, got %d messages", len(transcript))
	}
}

func TestTranscriptUnknownSession(t *testing.T) {
	r, _ := setupRouter(&stubInvoker{content: "hi"})

	req := httptest.NewRequest(http.MethodGet, "/chat/sessions/missing/messages", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
