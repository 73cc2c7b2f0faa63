// Package ai wraps the external language-model service behind a small
// text-completion client used by the model-assisted dedup path.
package ai

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultModel is the model used when the config does not name one.
const DefaultModel = "claude-sonnet-4-5-20250929"

// GetDefaultModel returns the default model, honoring the
// SCHOLARSIFT_MODEL environment override.
func GetDefaultModel() string {
	if model := os.Getenv("SCHOLARSIFT_MODEL"); model != "" {
		return model
	}
	return DefaultModel
}

// Config holds model client configuration.
type Config struct {
	APIKey             string        // Anthropic API key (if empty, reads ANTHROPIC_API_KEY)
	Model              string        // Model to use (default: DefaultModel)
	RequestTimeout     time.Duration // Per-call timeout (default: 60s)
	MaxConcurrentCalls int           // Concurrent call cap (default: 3, 0 = unlimited)
	RequestsPerMinute  int           // Rate limit across calls (default: 30, 0 = unlimited)
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Model:              GetDefaultModel(),
		RequestTimeout:     60 * time.Second,
		MaxConcurrentCalls: 3,
		RequestsPerMinute:  30,
	}
}

// Client is a thin wrapper over the Anthropic SDK: one blocking call
// per Complete, a concurrency cap, and a rate limiter. There is
// deliberately no retry or hedging here; the dedup engine fails fast
// and leaves retry policy to its callers.
type Client struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// NewClient creates a model client. The API key comes from the config
// or the ANTHROPIC_API_KEY environment variable.
func NewClient(cfg Config) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	var sem *semaphore.Weighted
	if cfg.MaxConcurrentCalls > 0 {
		sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentCalls))
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client:  &client,
		model:   model,
		timeout: timeout,
		sem:     sem,
		limiter: limiter,
	}, nil
}

// Complete sends a prompt to the model service and returns the
// concatenated text of the response. This is the engine's only
// suspension point; the per-call timeout from the config bounds it.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return "", err
		}
		defer c.sem.Release(1)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	response, err := c.client.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	log.Printf("[AI] completion: input=%d tokens, output=%d tokens, duration=%v",
		response.Usage.InputTokens, response.Usage.OutputTokens, time.Since(startTime))

	return responseText, nil
}
