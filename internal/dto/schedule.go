package dto

import "github.com/lockin-app/lockin-api/internal/models"

// ParseScheduleRequest carries the free-text commitment description.
type ParseScheduleRequest struct {
	Text string `json:"text" validate:"required"`
}

// ScheduleResponse is the common shape for schedule-bearing responses.
type ScheduleResponse struct {
	Schedule             *models.Schedule  `json:"schedule"`
	Questions            []models.Question `json:"questions"`
	Status               string            `json:"status"`
	HasMoreQuestions     bool              `json:"has_more_questions"`
	ReadyForOptimization bool              `json:"ready_for_optimization"`
}

// Schedule status values.
const (
	StatusComplete        = "complete"
	StatusQuestionsNeeded = "questions_needed"
)

// StoreScheduleRequest replaces the working schedule wholesale.
type StoreScheduleRequest struct {
	Schedule *models.Schedule `json:"schedule" validate:"required"`
	Final    bool             `json:"final"`
}

// AnswerRequest applies one clarifying-question answer.
type AnswerRequest struct {
	ItemID     string `json:"item_id" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=time duration course_code"`
	Answer     string `json:"answer" validate:"required"`
	Target     string `json:"target"`
	TargetType string `json:"target_type"`
}

// OptimizeResponse returns the optimized schedule.
type OptimizeResponse struct {
	Schedule *models.Schedule `json:"schedule"`
	Cached   bool             `json:"cached"`
}
