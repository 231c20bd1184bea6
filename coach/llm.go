// ABOUTME: Language model backend for chat completion
// ABOUTME: Wraps the OpenAI client with a single-turn Complete interface
package coach

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// chatTemperature is the fixed sampling temperature for every turn.
const chatTemperature = 0.7

// fallbackReply covers the rare empty-choices response from the API.
const fallbackReply = "Sorry, I could not generate a response."

// Completer is the language-model capability the orchestrator needs: one
// completion given a system and a user message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// OpenAIClient implements Completer against the OpenAI chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client for the given model. baseURL may be empty
// for the production API, or point at a test server.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete runs a single chat completion with exactly two messages. No
// conversation history is sent; the server is stateless across turns.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: chatTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return fallbackReply, nil
	}

	return resp.Choices[0].Message.Content, nil
}
