package dto

import "github.com/lockin-app/lockin-api/internal/models"

// UpdatePreferencesRequest stores the questionnaire answers.
type UpdatePreferencesRequest struct {
	Preferences models.Preferences `json:"preferences" validate:"required"`
}

// PreferencesResponse returns the stored answers and onboarding state.
type PreferencesResponse struct {
	Preferences *models.Preferences `json:"preferences"`
	Completed   bool                `json:"completed"`
}
