// Package llm calls OpenAI chat completions as the fallback answer source
// when neither a prompt nor a FAQ covers a user message.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"github.com/coldflow/supportbot/internal/config"
	"github.com/coldflow/supportbot/internal/logger"
)

// Apology is returned to the user when the model cannot be reached. The chat
// layer sends it verbatim so the conversation never dead-ends.
const Apology = "I apologize, but I'm experiencing some technical difficulties. Please try again in a moment."

// ErrDisabled is returned when the fallback is switched off in configuration.
var ErrDisabled = errors.New("llm fallback disabled")

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior exchange in the conversation, replayed to the model for
// context.
type Turn struct {
	Role    string
	Content string
}

// Reply is a generated answer plus its token cost.
type Reply struct {
	Content     string
	TotalTokens int64
}

// Client wraps the OpenAI API with the service's model settings and a
// client-side rate limit so a burst of unmatched messages cannot exhaust the
// API quota.
type Client struct {
	api     openai.Client
	cfg     config.OpenAIConfig
	limiter *rate.Limiter
	log     logger.Logger
}

// NewClient creates an OpenAI-backed fallback client.
func NewClient(cfg config.OpenAIConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		api:     openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}
}

// Generate produces an answer for the conversation so far. The system prompt
// comes from configuration; history is replayed oldest first.
func (c *Client) Generate(ctx context.Context, history []Turn) (*Reply, error) {
	if !c.cfg.Enabled {
		return nil, ErrDisabled
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("llm rate limit: %w", err)
	}

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(c.cfg.SystemPrompt))
	for _, turn := range history {
		switch turn.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	start := time.Now()
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.cfg.Model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(c.cfg.MaxTokens)),
		Temperature:         openai.Float(c.cfg.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, errors.New("openai completion: empty response")
	}

	c.log.Debug("llm reply generated",
		logger.String("model", c.cfg.Model),
		logger.Int64("total_tokens", completion.Usage.TotalTokens),
		logger.Duration("duration", time.Since(start)))

	return &Reply{
		Content:     completion.Choices[0].Message.Content,
		TotalTokens: completion.Usage.TotalTokens,
	}, nil
}
