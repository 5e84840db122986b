package dto

import "github.com/lockin-app/lockin-api/internal/models"

// ChatRequest carries one refinement message from the user.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// ChatResponse returns the assistant reply for one turn.
type ChatResponse struct {
	Message         string           `json:"message"`
	PendingSchedule *models.Schedule `json:"pending_schedule,omitempty"`
}

// ChatHistoryResponse lists the stored conversation.
type ChatHistoryResponse struct {
	Messages []models.ChatMessage `json:"messages"`
}

// FinalizeChatResponse reports the outcome of folding the conversation into
// the schedule and the user's custom prompt.
type FinalizeChatResponse struct {
	Schedule      *models.Schedule `json:"schedule"`
	PromptUpdated bool             `json:"prompt_updated"`
}
