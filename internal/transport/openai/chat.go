package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pricewise-in/pricewise/internal/domain"
	"github.com/pricewise-in/pricewise/internal/metrics"
)

const chatProvider = "openai_chat"

// ChatClient is a completion provider using the OpenAI-compatible chat API.
// Each attempt runs under its own timeout; a failed attempt is retried up to
// the configured count before the error is surfaced to the caller.
type ChatClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	retries int
	logger  *zap.Logger
}

// ChatConfig holds the chat provider settings.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Retries int
	Logger  *zap.Logger
}

// NewChatClient creates an OpenAI-compatible chat completion provider.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		retries: cfg.Retries,
		logger:  cfg.Logger,
	}
}

// Complete sends a system+user prompt pair and returns the assistant text.
func (c *ChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("Retrying chat completion", zap.Int("attempt", attempt))
		}

		text, err := c.complete(ctx, system, user)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

func (c *ChatClient) complete(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(chatProvider, "error").Inc()
		return "", parseAPIError("chat", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.ProviderRequestsTotal.WithLabelValues(chatProvider, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", domain.ErrMalformedResponse)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(chatProvider, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(chatProvider).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}
