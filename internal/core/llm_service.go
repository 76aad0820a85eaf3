package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"gwi.com/induction-assistant/internal/config"
)

// ErrUpstreamUnavailable is returned when the generative model cannot be
// reached or yields no usable text.
var ErrUpstreamUnavailable = errors.New("generative model unavailable")

const (
	defaultTemperature = 0.7
	defaultTopP        = 0.9
	defaultMaxTokens   = 500
)

// Health reports the reachability of the generative model service.
type Health struct {
	ServiceUp      bool `json:"service_up"`
	ModelAvailable bool `json:"model_available"`
}

// Generator is the generative-completion collaborator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	HealthCheck(ctx context.Context) Health
	Close() error
}

// GenerationOptions are the sampling options shared by all providers.
type GenerationOptions struct {
	Model       string
	Temperature float32
	TopP        float32
	MaxTokens   int
}

func generationOptions(cfg *config.Config) GenerationOptions {
	opts := GenerationOptions{
		Model:       cfg.ModelName,
		Temperature: defaultTemperature,
		TopP:        defaultTopP,
		MaxTokens:   cfg.MaxResponseLength,
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	return opts
}

// NewGenerator builds the generator selected by LLM_PROVIDER.
func NewGenerator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Generator, error) {
	opts := generationOptions(cfg)
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		return NewOpenAIGenerator(ollamaBaseURL(cfg.OllamaHost), "ollama", opts, logger), nil
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, opts, logger), nil
	case config.ProviderGemini:
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, opts, logger)
	case config.ProviderNone:
		return noneGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

// noneGenerator is used when no model is configured; every answer that
// needs generation degrades to the apology.
type noneGenerator struct{}

func (noneGenerator) Generate(context.Context, string) (string, error) {
	return "", ErrUpstreamUnavailable
}

func (noneGenerator) HealthCheck(context.Context) Health { return Health{} }

func (noneGenerator) Close() error { return nil }

// GeminiGenerator talks to Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	opts   GenerationOptions
	logger zerolog.Logger
}

func NewGeminiGenerator(ctx context.Context, apiKey string, opts GenerationOptions, logger zerolog.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, opts: opts, logger: logger}, nil
}

func (g *GeminiGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	if err := g.client.Close(); err != nil {
		return fmt.Errorf("failed to close GenAI client: %w", err)
	}
	g.logger.Info().Msg("GenAI client closed")
	return nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.opts.Model)
	model.SetTemperature(g.opts.Temperature)
	model.SetTopP(g.opts.TopP)
	model.SetMaxOutputTokens(int32(g.opts.MaxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates: %w", ErrUpstreamUnavailable)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			g.logger.Debug().Str("part_type", fmt.Sprintf("%T", part)).Msg("Skipping non-text Gemini part")
		}
	}
	return strings.TrimSpace(text.String()), nil
}

func (g *GeminiGenerator) HealthCheck(ctx context.Context) Health {
	var h Health
	it := g.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			h.ServiceUp = true
			break
		}
		if err != nil {
			g.logger.Warn().Err(err).Msg("Gemini model listing failed")
			return h
		}
		h.ServiceUp = true
		if modelNameMatches(strings.TrimPrefix(m.Name, "models/"), g.opts.Model) {
			h.ModelAvailable = true
			break
		}
	}
	return h
}

// modelNameMatches accepts an untagged configured name for the ":latest"
// tag.
func modelNameMatches(listed, configured string) bool {
	return listed == configured || listed == configured+":latest"
}
