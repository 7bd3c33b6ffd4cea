package adapter

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "graphchat/pkg/errors"
	"graphchat/pkg/logger"
)

// LLMAdapter handles communication with an OpenAI-compatible completion
// endpoint. Pointing BaseURL at a proxy such as LiteLLM works unchanged.
type LLMAdapter struct {
	client *openai.Client
	model  string
	mu     sync.RWMutex // Protects model field for concurrent access
	logger *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter. An empty baseURL targets the
// OpenAI API itself; an empty apiKey is replaced with a placeholder for
// proxies that do their own auth.
func NewLLMAdapter(baseURL, apiKey, modelID string) *LLMAdapter {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = apiBase(baseURL)
	}

	return &LLMAdapter{
		client: openai.NewClientWithConfig(config),
		model:  modelID,
		logger: logger.Get(),
	}
}

// apiBase normalizes a configured endpoint to its /v1 root.
func apiBase(baseURL string) string {
	trimmed := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}

// SetModel updates the model used by this adapter
func (a *LLMAdapter) SetModel(model string) {
	if model != "" {
		a.mu.Lock()
		a.model = model
		a.mu.Unlock()
		a.logger.Debug("LLM adapter model updated", zap.String("model", model))
	}
}

// GetModel returns the current model
func (a *LLMAdapter) GetModel() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// Generate sends one completion request and returns the response text.
// Transient failures are retried with a linear backoff before giving up.
func (a *LLMAdapter) Generate(ctx context.Context, systemPrompt, userMsg string) (string, error) {
	a.mu.RLock()
	currentModel := a.model
	a.mu.RUnlock()

	req := openai.ChatCompletionRequest{
		Model: currentModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userMsg,
			},
		},
		Temperature: 0.7,
	}

	var resp openai.ChatCompletionResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			a.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return "", apperrors.NewLLMFailed(currentModel, attempt, ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", currentModel),
		)
	}
	if err != nil {
		return "", apperrors.NewLLMFailed(currentModel, maxRetries, err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewLLMFailed(currentModel, 1, nil)
	}
	content := resp.Choices[0].Message.Content

	a.logger.Debug("LLM response generated",
		zap.String("model", currentModel),
		zap.Int("length", len(content)),
	)
	return content, nil
}
