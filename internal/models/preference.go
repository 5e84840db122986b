package models

// Preferences holds the onboarding questionnaire answers used to steer
// schedule optimization.
type Preferences struct {
	WakeTime          string   `json:"wake_time,omitempty"`
	SleepTime         string   `json:"sleep_time,omitempty"`
	ProductiveHours   string   `json:"productive_hours,omitempty"`
	StudySessionStyle string   `json:"study_session_style,omitempty"`
	BreakLength       int      `json:"break_length_minutes,omitempty"`
	FocusDuration     int      `json:"focus_duration_minutes,omitempty"`
	BusyDays          []string `json:"busy_days,omitempty"`
	Notes             string   `json:"notes,omitempty"`
}
