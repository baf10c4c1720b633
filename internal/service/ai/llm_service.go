package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/maumlab/counselbot/backend/internal/config"
	"github.com/maumlab/counselbot/backend/internal/model/chat"
	"github.com/maumlab/counselbot/backend/internal/model/persona"
)

// Service adapts the hosted chat-completion endpoint. One outbound call per
// invocation; no retry, no caching.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the completion client from configuration.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled indicates whether incremental output is configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// GenerateReply produces the assistant reply in one shot.
func (s *Service) GenerateReply(ctx context.Context, p persona.Persona, history []chat.Turn, userText string, riskDetected bool) (*schema.Message, error) {
	input := buildChainInput(p, history, userText, riskDetected)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run completion chain: %w", err)
	}

	log.Printf("[ai] generated reply persona=%s risk=%t length=%d", p.ID, riskDetected, len(response.Content))
	return response, nil
}

// StreamReply produces the assistant reply as a forward-only fragment
// stream. The reader is consumed exactly once and closed by the caller.
func (s *Service) StreamReply(ctx context.Context, p persona.Persona, history []chat.Turn, userText string, riskDetected bool) (*schema.StreamReader[*schema.Message], error) {
	input := buildChainInput(p, history, userText, riskDetected)

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream completion chain: %w", err)
	}

	return stream, nil
}

func buildChainInput(p persona.Persona, history []chat.Turn, userText string, riskDetected bool) map[string]any {
	return map[string]any{
		"system":  ComposeSystemPrompt(p.SystemPrompt, riskDetected),
		"history": buildHistoryMessages(history),
		"query":   userText,
	}
}

// buildHistoryMessages maps the whole stored transcript into model messages.
// The full history is resent every turn; there is no windowing, so model
// context grows with the conversation.
func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}

	return history
}
