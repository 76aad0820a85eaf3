package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gwi.com/induction-assistant/internal/utils"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

const (
	ApologyMessage = "Sorry, I'm having trouble reaching the knowledge model right now. Please try again later or contact HR."
	NoInfoMessage  = "Sorry, I don't have this information. Please contact HR."

	DefaultLLMTimeout = 30 * time.Second
)

const contextPromptTemplate = `You are a helpful HR assistant for new employees. Answer the question using
only the information in the context below. If the context does not contain
the answer, say that you don't have this information.

Context:
%s

Question: %s

Answer:`

const plainPromptTemplate = `You are a helpful HR assistant for new employees. Answer this question briefly and professionally.

Question: %s

Answer:`

// Answer is what the end user receives.
type Answer struct {
	Text       string     `json:"answer"`
	Confidence Confidence `json:"confidence"`
	MatchType  MatchType  `json:"match_type"`
	Category   string     `json:"category"`
}

// BuildPrompt embeds the retrieved context in the fixed template. Without
// context it falls back to a plain HR prompt.
func BuildPrompt(question, kbContext string) string {
	if kbContext == "" {
		return fmt.Sprintf(plainPromptTemplate, question)
	}
	return fmt.Sprintf(contextPromptTemplate, kbContext, question)
}

// Composer turns a MatchResult into an Answer. It never returns an error:
// generation failures degrade to ApologyMessage.
type Composer struct {
	generator Generator
	cache     AnswerCache
	timeout   time.Duration
	logger    zerolog.Logger
}

func NewComposer(generator Generator, cache AnswerCache, timeout time.Duration, logger zerolog.Logger) *Composer {
	if cache == nil {
		cache = noCache{}
	}
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	return &Composer{generator: generator, cache: cache, timeout: timeout, logger: logger}
}

func (c *Composer) Compose(ctx context.Context, question string, result MatchResult) Answer {
	answer := Answer{MatchType: result.Type, Category: result.Category}

	switch result.Type {
	case MatchExact:
		answer.Text = result.Context
		answer.Confidence = ConfidenceHigh
	case MatchSimilarity:
		answer.Text = c.generate(ctx, question, result.Context)
		answer.Confidence = ConfidenceMedium
	case MatchDisabled:
		answer.Text = result.Context
		if answer.Text == "" {
			answer.Text = DefaultDisabledMessage
		}
		answer.Confidence = ConfidenceLow
	default:
		answer.Text = NoInfoMessage
		answer.Confidence = ConfidenceLow
	}
	return answer
}

func (c *Composer) generate(ctx context.Context, question, kbContext string) string {
	key := answerKey(utils.Normalize(question), kbContext)
	if cached, ok := c.cache.Get(ctx, key); ok {
		c.logger.Debug().Msg("Answer cache hit")
		return cached
	}

	text, err := c.Generate(ctx, BuildPrompt(question, kbContext))
	if err != nil {
		c.logger.Warn().Err(err).Msg("Generation failed, answering with apology")
		return ApologyMessage
	}
	if text == "" {
		c.logger.Warn().Msg("Generation returned no text, answering with apology")
		return ApologyMessage
	}

	c.cache.Set(ctx, key, text)
	return text
}

// Generate calls the model under the configured timeout. An empty reply is
// returned as is.
func (c *Composer) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.generator.Generate(ctx, prompt)
	c.logger.Debug().Dur("took", time.Since(start)).Bool("ok", err == nil).Msg("Generation finished")
	return text, err
}

// Health reports the generator's status under the same timeout.
func (c *Composer) Health(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.generator.HealthCheck(ctx)
}
