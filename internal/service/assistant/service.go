package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/clearsmile/dental-assistant/backend/internal/model/chat"
)

var (
	// ErrNotReady means model credentials or endpoint configuration have
	// not been established; no model call is attempted.
	ErrNotReady = errors.New("assistant not ready")
	// ErrModelInvocation means the remote model call failed. The cause is
	// opaque and not retried here.
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrResponseFormat means the model replied but its payload could not
	// be decoded to locate the text field.
	ErrResponseFormat = errors.New("unexpected model response format")

	// ErrMessageRequired rejects an empty user message before any model
	// work happens.
	ErrMessageRequired = errors.New("message is required")
)

// Service sequences one assistant turn: build prompt, invoke the model,
// parse the reply. It holds no per-session state; the caller supplies a
// fresh chat.Context each call and appends the resulting turn itself.
type Service struct {
	invoker Invoker
}

// NewService wires the orchestrator to a model invoker. A nil invoker is
// allowed and leaves the service in not-ready mode.
func NewService(invoker Invoker) *Service {
	return &Service{invoker: invoker}
}

// Ready reports whether a model invoker has been configured.
func (s *Service) Ready() bool {
	return s != nil && s.invoker != nil
}

// ProcessMessage runs one turn and returns the structured response.
// It fails with ErrNotReady, ErrModelInvocation, or ErrResponseFormat;
// unparseable content is not an error and comes back as the fallback
// response instead.
func (s *Service) ProcessMessage(ctx context.Context, message string, chatCtx chat.Context) (chat.Response, error) {
	if !s.Ready() {
		return chat.Response{}, ErrNotReady
	}
	if strings.TrimSpace(message) == "" {
		return chat.Response{}, ErrMessageRequired
	}

	promptText := BuildPrompt(message, chatCtx)

	raw, err := s.invoker.Invoke(ctx, promptText)
	if err != nil {
		return chat.Response{}, fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}

	text, err := DecodePayload(raw)
	if err != nil {
		return chat.Response{}, fmt.Errorf("%w: %v", ErrResponseFormat, err)
	}

	resp := ParseContent(text)
	log.Printf("[assistant] turn complete session=%s intent=%q len=%d", chatCtx.SessionID, resp.Intent, len(resp.Message))
	return resp, nil
}
