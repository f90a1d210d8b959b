package entity

import "time"

type CreateChatLinkRequest struct {
	Budget            *string `json:"budget,omitempty"`
	NotificationEmail *string `json:"notification_email,omitempty"`
	Persona           string  `json:"persona,omitempty"`
}

type CreateChatLinkResponse struct {
	ChatID  string `json:"chat_id"`
	ChatURL string `json:"chat_url"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

type CompleteChatResponse struct {
	ResultID  string `json:"result_id"`
	ResultURL string `json:"result_url"`
}

type MessageDTO struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

type SessionDTO struct {
	ID        string        `json:"session_id"`
	Persona   string        `json:"persona"`
	Status    SessionStatus `json:"status"`
	Budget    *string       `json:"budget,omitempty"`
	Messages  []MessageDTO  `json:"messages"`
	ResultID  *string       `json:"result_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type GiftResultDTO struct {
	ID          string           `json:"result_id"`
	Suggestions []GiftSuggestion `json:"gift_suggestions"`
	CreatedAt   time.Time        `json:"created_at"`
}
