package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIChatModel is the production ChatModel backed by the OpenAI chat
// completions API.
type OpenAIChatModel struct {
	client *openai.LLM
	model  string
}

func NewOpenAIChatModel(apiKey, model string) (*OpenAIChatModel, error) {
	client, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("could not create OpenAI client: %v", err)
	}

	return &OpenAIChatModel{client: client, model: model}, nil
}

func (m *OpenAIChatModel) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	resp, err := m.client.GenerateContent(ctx, content, llms.WithMaxTokens(maxTokens))
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Content, nil
}
