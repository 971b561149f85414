package adapter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "moodgraph/backend/pkg/errors"
	"moodgraph/backend/pkg/logger"
)

// Roles accepted in a Turn
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior message sent along with a generation request
type Turn struct {
	Role    string
	Content string
}

// Response represents the capability's answer
type Response struct {
	Content string
	Model   string
}

// Generator is the text-generation capability: prompt in, text out.
// Implementations may fail or time out; callers decide on the fallback.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, turns []Turn) (*Response, error)
}

// LLMAdapter talks to any OpenAI-compatible chat completion endpoint
type LLMAdapter struct {
	client     *openai.Client
	model      string
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	mu         sync.RWMutex // Protects model field for concurrent access
	logger     *zap.Logger
}

// Option customizes an LLMAdapter
type Option func(*LLMAdapter)

// WithMaxRetries sets the number of attempts per request
func WithMaxRetries(n int) Option {
	return func(a *LLMAdapter) {
		if n > 0 {
			a.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay between attempts
func WithBackoff(d time.Duration) Option {
	return func(a *LLMAdapter) { a.backoff = d }
}

// WithTimeout bounds every HTTP round trip to the endpoint
func WithTimeout(d time.Duration) Option {
	return func(a *LLMAdapter) { a.timeout = d }
}

// NewLLMAdapter creates a new LLM adapter
func NewLLMAdapter(baseURL, apiKey, modelID string, opts ...Option) *LLMAdapter {
	a := &LLMAdapter{
		model:      modelID,
		maxRetries: 3,
		backoff:    time.Second,
		logger:     logger.Named("llm"),
	}
	for _, opt := range opts {
		opt(a)
	}

	// Self-hosted gateways accept any key
	if apiKey == "" {
		apiKey = "dummy-key"
	}
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	if a.timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: a.timeout}
	}
	a.client = openai.NewClientWithConfig(config)
	return a
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

// Generate sends a request to the LLM and returns the response
func (a *LLMAdapter) Generate(ctx context.Context, systemPrompt string, turns []Turn) (*Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	currentModel := a.GetModel()
	req := openai.ChatCompletionRequest{
		Model:       currentModel,
		Messages:    messages,
		Temperature: 0.4,
	}

	// Retry logic with linear backoff
	var resp openai.ChatCompletionResponse
	var err error
	attempts := 0
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * a.backoff
			a.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", wait),
			)
			select {
			case <-ctx.Done():
				return nil, apperrors.NewContextTimeout("llm generate", wait, ctx.Err())
			case <-time.After(wait):
			}
		}

		attempts++
		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", currentModel),
		)

		status := statusCode(err)
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, apperrors.NewGenerationUnavailable("unauthorized", err)
		}
		if ctx.Err() != nil {
			return nil, apperrors.NewContextTimeout("llm generate", 0, ctx.Err())
		}
		if !isRetryableStatus(status) {
			break
		}
	}

	if err != nil {
		return nil, apperrors.NewGenerationFailed(currentModel, attempts, isRetryableStatus(statusCode(err)), err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.ErrGenerationNoResponse
	}

	content := resp.Choices[0].Message.Content
	a.logger.Debug("LLM response generated",
		zap.String("model", currentModel),
		zap.Int("attempts", attempts),
		zap.Int("content_length", len(content)),
	)

	return &Response{Content: content, Model: resp.Model}, nil
}

// statusCode digs the HTTP status out of a go-openai error, 0 when unknown
func statusCode(err error) int {
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

func isRetryableStatus(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}
