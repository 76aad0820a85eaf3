package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator speaks the OpenAI chat-completions protocol. Ollama serves
// the same protocol under /v1.
type OpenAIGenerator struct {
	client *openai.Client
	opts   GenerationOptions
	logger zerolog.Logger
}

func ollamaBaseURL(host string) string {
	return strings.TrimRight(host, "/") + "/v1"
}

func NewOpenAIGenerator(baseURL, apiKey string, opts GenerationOptions, logger zerolog.Logger) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		opts:   opts,
		logger: logger,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.opts.Temperature,
		TopP:        g.opts.TopP,
		MaxTokens:   g.opts.MaxTokens,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion had no choices: %w", ErrUpstreamUnavailable)
	}

	g.logger.Debug().
		Str("model", g.opts.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("Chat completion done")
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *OpenAIGenerator) HealthCheck(ctx context.Context) Health {
	var h Health
	models, err := g.client.ListModels(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("Model listing failed")
		return h
	}
	h.ServiceUp = true
	for _, m := range models.Models {
		if modelNameMatches(m.ID, g.opts.Model) {
			h.ModelAvailable = true
			break
		}
	}
	return h
}

func (g *OpenAIGenerator) Close() error { return nil }
