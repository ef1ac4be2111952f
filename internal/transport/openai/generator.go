// Package openai generates text through an OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/commu-practical/helpmap/internal/metrics"
)

const providerName = "openai"

// Generator is a text generation provider using the chat completion API.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// Config holds the generation provider settings.
type Config struct {
	APIKey      string
	BaseURL     string // empty = api.openai.com
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewGenerator creates an OpenAI-compatible generator.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		timeout:     timeout,
	}
}

// Name returns the provider name.
func (g *Generator) Name() string { return providerName }

// Generate sends prompt as a single user message and returns the first
// choice's content, or "" when the reply carries none.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		metrics.ObserveUpstream(providerName, "error", start)
		metrics.GenerationAttemptsTotal.WithLabelValues(providerName, "error").Inc()
		return "", parseAPIError(err)
	}
	metrics.ObserveUpstream(providerName, "ok", start)
	metrics.GenerationAttemptsTotal.WithLabelValues(providerName, "ok").Inc()

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("chat completion error %d: %s: %w", reqErr.HTTPStatusCode, detail, err)
		}
		return fmt.Errorf("chat completion error %d: %w", reqErr.HTTPStatusCode, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat completion error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	return fmt.Errorf("chat completion request failed: %w", err)
}

// extractDetail extracts the "detail" field used by some compatible gateways.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
