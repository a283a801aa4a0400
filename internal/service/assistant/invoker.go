package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/clearsmile/dental-assistant/backend/internal/config"
)

// Invoker is the boundary to the hosted model: one rendered prompt in,
// the provider's raw payload out. Implementations make a single attempt
// per call; retry policy belongs to the caller.
type Invoker interface {
	Invoke(ctx context.Context, promptText string) ([]byte, error)
}

// ArkInvoker calls the configured Ark model through an eino chain.
type ArkInvoker struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkInvoker builds the chain once; credentials are resolved here and
// read-only afterward, so concurrent Invoke calls are safe.
func NewArkInvoker(ctx context.Context, cfg config.AIConfig) (*ArkInvoker, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile assistant chain: %w", err)
	}

	return &ArkInvoker{chain: runnable}, nil
}

// Invoke runs the chain and returns the resulting message in its wire
// JSON form, leaving payload decoding to the parser.
func (i *ArkInvoker) Invoke(ctx context.Context, promptText string) ([]byte, error) {
	msg, err := i.chain.Invoke(ctx, map[string]any{"prompt": promptText})
	if err != nil {
		return nil, fmt.Errorf("failed to run assistant chain: %w", err)
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model message: %w", err)
	}
	return raw, nil
}
