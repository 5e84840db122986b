package models

import (
	"encoding/json"
	"time"
)

// User represents an application user stored in the users table.
type User struct {
	ID                   string          `db:"id" json:"id"`
	Email                string          `db:"email" json:"email"`
	PasswordHash         string          `db:"password_hash" json:"-"`
	FirstName            string          `db:"first_name" json:"first_name"`
	LastName             string          `db:"last_name" json:"last_name"`
	Preferences          json.RawMessage `db:"preferences" json:"preferences,omitempty"`
	PreferencesCompleted bool            `db:"preferences_completed" json:"preferences_completed"`
	CustomPrompt         *string         `db:"custom_prompt" json:"custom_prompt,omitempty"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updated_at"`
}

// ScheduleSnapshot holds a user's persisted schedule documents.
type ScheduleSnapshot struct {
	UserID           string          `db:"user_id" json:"user_id"`
	LatestSchedule   json.RawMessage `db:"latest_schedule" json:"latest_schedule,omitempty"`
	ParsedSchedule   json.RawMessage `db:"parsed_schedule" json:"parsed_schedule,omitempty"`
	ConfirmedAt      *time.Time      `db:"confirmed_at" json:"confirmed_at,omitempty"`
	ImportedCalendar json.RawMessage `db:"imported_calendar" json:"imported_calendar,omitempty"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
