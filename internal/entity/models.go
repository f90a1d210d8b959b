package entity

import (
	"time"
)

type SessionStatus string

// Session status represents the state of a gift interview session
const (
	SessionStatusPending   SessionStatus = "PENDING"   // Link minted, interview in progress
	SessionStatusCompleted SessionStatus = "COMPLETED" // Interview finished, suggestions stored
)

type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// Message is a single turn in a conversation. Transcript order is
// chronological; the first entry, if present, is the assistant's
// opening question.
type Message struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

type Transcript []Message

// WithoutTrailingAssistant returns the transcript minus a trailing
// assistant message. Used when summarizing: an unanswered wrap-up
// question carries no information about the recipient.
func (t Transcript) WithoutTrailingAssistant() Transcript {
	if n := len(t); n > 0 && t[n-1].Role == RoleAssistant {
		return t[:n-1]
	}
	return t
}

// ChatSession is one sender-to-recipient gift interview, keyed by the
// shareable chat link ID.
type ChatSession struct {
	ID                string        `json:"session_id"`
	Persona           string        `json:"persona"`
	Status            SessionStatus `json:"status"`
	Budget            *string       `json:"budget,omitempty"`
	NotificationEmail *string       `json:"notification_email,omitempty"`
	Transcript        Transcript    `json:"transcript"`
	ResultID          *string       `json:"result_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// GiftSuggestion is one itemized idea produced by the synthesizer.
// Keywords may be empty when the model omitted the keywords section.
type GiftSuggestion struct {
	Text     string `json:"text"`
	Keywords string `json:"keywords"`
}

// GiftResult is the suggestion list stored under a freshly minted
// result link. Immutable once stored.
type GiftResult struct {
	ID          string           `json:"result_id"`
	SessionID   string           `json:"session_id"`
	Suggestions []GiftSuggestion `json:"gift_suggestions"`
	CreatedAt   time.Time        `json:"created_at"`
}
