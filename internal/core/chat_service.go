package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gwi.com/induction-assistant/internal/store"
)

// ErrValidation marks a request rejected before matching.
var ErrValidation = errors.New("validation failed")

// DefaultSessionID is used when the client sends no session id.
const DefaultSessionID = "default"

// ChatReply is an answer to one question within a session.
type ChatReply struct {
	Answer
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AssistantService runs the question flow and records both turns in the
// session history.
type AssistantService struct {
	matcher  *Matcher
	composer *Composer
	sessions *store.SessionStore
	logger   zerolog.Logger
}

func NewAssistantService(matcher *Matcher, composer *Composer, sessions *store.SessionStore, logger zerolog.Logger) *AssistantService {
	return &AssistantService{
		matcher:  matcher,
		composer: composer,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *AssistantService) Ask(ctx context.Context, question, sessionID string) (ChatReply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return ChatReply{}, fmt.Errorf("%w: no question provided", ErrValidation)
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	s.sessions.Append(sessionID, store.Turn{Role: store.RoleUser, Text: question})

	result := s.matcher.Match(question)
	answer := s.composer.Compose(ctx, question, result)

	turn := s.sessions.Append(sessionID, store.Turn{
		Role:       store.RoleAssistant,
		Text:       answer.Text,
		Confidence: string(answer.Confidence),
		MatchType:  string(answer.MatchType),
		Category:   answer.Category,
	})

	s.logger.Info().
		Str("session_id", sessionID).
		Str("match_type", string(answer.MatchType)).
		Str("category", answer.Category).
		Str("confidence", string(answer.Confidence)).
		Msg("Question answered")

	return ChatReply{Answer: answer, SessionID: sessionID, Timestamp: turn.Timestamp}, nil
}

// TestGeneration sends a question straight to the model without retrieval.
// Unlike Ask, an unusable reply is reported as an empty string.
func (s *AssistantService) TestGeneration(ctx context.Context, question string) (string, Health) {
	text, err := s.composer.Generate(ctx, BuildPrompt(question, ""))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Test generation failed")
		text = ""
	}
	return text, s.composer.Health(ctx)
}

// Health reports the generative model status.
func (s *AssistantService) Health(ctx context.Context) Health {
	return s.composer.Health(ctx)
}

// Suggestions are starter questions offered to new employees.
var Suggestions = []string{
	"What is the leave policy?",
	"How do I contact HR?",
	"What are the company benefits?",
	"What time does work start?",
	"Who should I contact for IT issues?",
	"What is the dress code?",
	"How do I request time off?",
	"What is the probation period?",
	"How do I access company systems?",
	"What are the company values?",
}
