// Package chat implements the retrieval-augmented chat pipeline over
// uploaded documents.
package chat

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// promptTemplate mirrors the assistant's grounding instruction: answer only
// from the supplied context and refuse otherwise.
const promptTemplate = `Answer the question as detailed as possible from the provided context, make sure to provide all the details. If the answer is not in the provided context just say, "answer is not available in the context", don't provide the wrong answer.

Context:
%s

Question: %s

Answer:`

// Generator produces an answer for a question grounded in context text.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
	Model() string
}

// OpenAIClient calls a hosted chat model through the OpenAI-compatible API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIClient creates a client for the given model. baseURL may be
// empty for the default endpoint.
func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: 0.3,
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Generate implements Generator.
func (c *OpenAIClient) Generate(ctx context.Context, question, contextText string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(promptTemplate, contextText, question),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat: model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat: model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
