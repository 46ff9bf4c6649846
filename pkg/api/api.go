// Package api defines the request and response shapes of the HTTP surface.
package api

import "time"

type SendMessageRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
	GenerateVisual bool   `json:"generate_visual"`
	GenerateAudio  bool   `json:"generate_audio"`
}

type ChatTurn struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	ImageURL    string    `json:"image_url,omitempty"`
	AudioURL    string    `json:"audio_url,omitempty"`
	ImagePrompt string    `json:"image_prompt,omitempty"`
}

type SendMessageResponse struct {
	ConversationID string   `json:"conversation_id"`
	UserTurn       ChatTurn `json:"user_turn"`
	AssistantTurn  ChatTurn `json:"assistant_turn"`
	Field          string   `json:"field,omitempty"`
	HistoryWiped   bool     `json:"history_wiped,omitempty"`
}

type ChatConversationMetadata struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	InferredField string    `json:"inferred_field,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	TurnCount     int       `json:"turn_count"`
}

type GetConversationsRequest struct {
	Limit int `schema:"limit"`
}

type GetConversationsResponse struct {
	Conversations []ChatConversationMetadata `json:"conversations"`
}

type ChatConversation struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	InferredField string     `json:"inferred_field,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Turns         []ChatTurn `json:"turns"`
}

type RenameConversationRequest struct {
	Title string `json:"title"`
}

type RegenerateImageResponse struct {
	ImageURL    string `json:"image_url,omitempty"`
	ImagePrompt string `json:"image_prompt,omitempty"`
}
