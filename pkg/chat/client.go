package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"

	"github.com/go-go-golems/sherlock/pkg/conversation"
)

// Client performs a single model completion over a conversation.
// Implementations must treat an empty response as a failure so the retry
// layer can classify it as retryable.
type Client interface {
	Complete(ctx context.Context, conv conversation.Conversation) (string, error)
}

// ErrEmptyResponse is returned when the model answers with blank content.
var ErrEmptyResponse = errors.New("model returned empty content")

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	client         *go_openai.Client
	model          string
	requestTimeout time.Duration
}

type OpenAIOption func(*OpenAIClient)

// WithRequestTimeout bounds each individual completion request.
func WithRequestTimeout(d time.Duration) OpenAIOption {
	return func(c *OpenAIClient) { c.requestTimeout = d }
}

// NewOpenAIClient creates a client for the given endpoint. baseURL may be
// empty to use the OpenAI default.
func NewOpenAIClient(apiKey, baseURL, model string, opts ...OpenAIOption) *OpenAIClient {
	cfg := go_openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	c := &OpenAIClient{
		client:         go_openai.NewClientWithConfig(cfg),
		model:          model,
		requestTimeout: 120 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Complete issues one chat completion with the per-request timeout and
// returns the assistant text.
func (c *OpenAIClient) Complete(ctx context.Context, conv conversation.Conversation) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	messages := make([]go_openai.ChatCompletionMessage, 0, len(conv))
	for _, m := range conv {
		messages = append(messages, go_openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	log.Debug().
		Str("model", c.model).
		Int("num_messages", len(messages)).
		Msg("chat: completion request")

	resp, err := c.client.CreateChatCompletion(reqCtx, go_openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
