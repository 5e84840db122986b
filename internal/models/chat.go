package models

import "time"

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single turn in the schedule-refinement conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatReply is returned for each chat turn. When the assistant proposed a
// schedule change, PendingSchedule carries the updated document awaiting
// finalization.
type ChatReply struct {
	Message         string    `json:"message"`
	PendingSchedule *Schedule `json:"pending_schedule,omitempty"`
}
