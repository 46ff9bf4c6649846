// Package chat is the conversation state and field-inference engine: it
// assembles grounded system prompts, parses directive markers out of model
// output, enriches turns with media, and persists conversation history
// under a bounded storage medium.
package chat

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"mentor-backend/internal/fields"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Identity is the bucket a history collection is scoped under: an
// authenticated user id, or Anonymous.
type Identity string

const Anonymous Identity = ""

// Turn is one message within a conversation. Immutable once appended,
// except that image/audio fields may be filled in later on assistant turns.
type Turn struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	AudioURL    string    `json:"audioUrl,omitempty"`
	ImagePrompt string    `json:"imagePrompt,omitempty"`
}

// NewTurn creates a turn with a fresh id and timestamp.
func NewTurn(role Role, content string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Conversation is an ordered sequence of turns. Insertion order is
// chronological order.
type Conversation struct {
	ID            string       `json:"id"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Title         string       `json:"title"`
	InferredField fields.Field `json:"inferredField,omitempty"`
	Turns         []Turn       `json:"turns"`
}

const titleMaxRunes = 50

// deriveTitle builds a conversation title from its first user turn.
func deriveTitle(turns []Turn) string {
	for _, turn := range turns {
		if turn.Role != RoleUser {
			continue
		}
		if utf8.RuneCountInString(turn.Content) > titleMaxRunes {
			return string([]rune(turn.Content)[:titleMaxRunes]) + "..."
		}
		return turn.Content
	}
	return "Chat conversation"
}

// LegacyRecord is the single-turn history shape older clients read from the
// history:: keys. It is still written alongside full conversations.
type LegacyRecord struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"created_at"`
	Prompt      string `json:"prompt"`
	Advice      string `json:"advice"`
	ImageURL    string `json:"imageUrl"`
	AudioURL    string `json:"audioUrl"`
	ImagePrompt string `json:"imagePrompt"`
}
