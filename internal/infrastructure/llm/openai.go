package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ChatDigest/internal/config"
	"ChatDigest/internal/ports"
)

// OpenAIModel implements ports.ChatModel on the OpenAI chat completions
// API. Temperature and token budget are fixed configuration, not tuned
// per call.
type OpenAIModel struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ ports.ChatModel = (*OpenAIModel)(nil)

// NewOpenAIModel builds a client from configuration.
func NewOpenAIModel(cfg config.OpenAIConfig) *OpenAIModel {
	return &OpenAIModel{
		client:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Complete sends one system instruction and one user turn and returns
// the reply text. An empty reply is passed through unchanged; the
// caller treats it as "nothing relevant".
func (m *OpenAIModel) Complete(ctx context.Context, system, user string) (string, error) {
	if m.model == "" {
		return "", fmt.Errorf("openai model is not configured")
	}

	completion, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(m.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(m.temperature),
		MaxTokens:   openai.Int(m.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
