package store

import "time"

// KnowledgeRecord is one question/answer pair of a category.
type KnowledgeRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CategoryInfo describes the current content of one category.
type CategoryInfo struct {
	Category string            `json:"category"`
	Count    int               `json:"count"`
	Items    []KnowledgeRecord `json:"items"`
}

// CategorySetting governs whether a category may be surfaced to users.
type CategorySetting struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation session. The match fields are only
// set on assistant turns.
type Turn struct {
	ID         string    `json:"id"` // UUID
	Role       Role      `json:"role"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Confidence string    `json:"confidence,omitempty"`
	MatchType  string    `json:"match_type,omitempty"`
	Category   string    `json:"category,omitempty"`
}

type Session struct {
	ID    string `json:"session_id"`
	Turns []Turn `json:"history"`
}
