// Package bedrock generates text through the AWS Bedrock Runtime Converse API.
package bedrock

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/commu-practical/helpmap/internal/metrics"
)

const providerName = "bedrock"

// converseAPI is the slice of the Bedrock Runtime client we use.
type converseAPI interface {
	Converse(
		ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options),
	) (*bedrockruntime.ConverseOutput, error)
}

// Config holds model and credential settings.
type Config struct {
	Region          string
	AccessKeyID     string // empty = default AWS credential chain
	SecretAccessKey string
	ModelID         string
	MaxTokens       int
	Temperature     float64
	TopK            int
	Timeout         time.Duration
}

// Generator calls Converse with a single user message.
type Generator struct {
	client      converseAPI
	modelID     string
	maxTokens   int32
	temperature float32
	topK        int
	timeout     time.Duration
}

// NewGenerator loads AWS configuration and creates a Bedrock Runtime client.
// SDK-level retries are disabled; callers own the retry policy.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		o.RetryMaxAttempts = 1
	})
	return newGenerator(client, cfg), nil
}

func newGenerator(client converseAPI, cfg Config) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		client:      client,
		modelID:     cfg.ModelID,
		maxTokens:   int32(cfg.MaxTokens), //nolint:gosec // bounded by config defaults
		temperature: float32(cfg.Temperature),
		topK:        cfg.TopK,
		timeout:     timeout,
	}
}

// Name returns the provider name.
func (g *Generator) Name() string { return providerName }

// Generate sends prompt and returns the first text block of the reply,
// or "" when the reply carries no text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	out, err := g.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(g.modelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(g.maxTokens),
			Temperature: aws.Float32(g.temperature),
		},
		AdditionalModelRequestFields: document.NewLazyDocument(map[string]any{"top_k": g.topK}),
	})
	if err != nil {
		metrics.ObserveUpstream(providerName, "error", start)
		metrics.GenerationAttemptsTotal.WithLabelValues(providerName, "error").Inc()
		return "", fmt.Errorf("bedrock converse: %w", err)
	}
	metrics.ObserveUpstream(providerName, "ok", start)
	metrics.GenerationAttemptsTotal.WithLabelValues(providerName, "ok").Inc()

	return firstText(out), nil
}

func firstText(out *bedrockruntime.ConverseOutput) string {
	if out == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			return text.Value
		}
	}
	return ""
}
