// Package llm talks to Groq through its OpenAI-compatible chat API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"tripsearch/internal/adapters/observability"
	"tripsearch/internal/domain"
	"tripsearch/internal/retry"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"
	maxTokens      = 1024
)

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxAttempts int
	// Retry overrides the invoker built from MaxAttempts.
	Retry *retry.Invoker
}

// Client is a domain.Completer. Every completion runs under the retry invoker.
type Client struct {
	client *openai.Client
	model  string
	retry  *retry.Invoker
}

func New(opt Options) (*Client, error) {
	if opt.APIKey == "" {
		return nil, domain.ErrLLMUnavailable
	}
	if opt.Model == "" {
		opt.Model = DefaultModel
	}
	baseURL := opt.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	config := openai.DefaultConfig(opt.APIKey)
	config.BaseURL = baseURL

	inv := opt.Retry
	if inv == nil {
		inv = retry.New(opt.MaxAttempts)
	}
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  opt.Model,
		retry:  inv,
	}, nil
}

func (c *Client) Model() string { return c.model }

// Complete sends one system+user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	return retry.Call(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.complete(ctx, system, prompt)
	})
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	observability.ObserveExternal("groq", "chat_completions", statusOf(err), time.Since(start))
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			// Groq does not always say "rate limit" in the message.
			return "", fmt.Errorf("groq rate limit: %w", err)
		}
		return "", fmt.Errorf("groq API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq: empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
