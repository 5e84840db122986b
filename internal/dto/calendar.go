package dto

import "github.com/lockin-app/lockin-api/internal/models"

// AuthorizeURLResponse returns the Google consent URL to redirect to.
type AuthorizeURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// OAuthCallbackRequest completes the Google OAuth code exchange.
type OAuthCallbackRequest struct {
	Code        string `json:"code" validate:"required"`
	State       string `json:"state"`
	RedirectURI string `json:"redirect_uri" validate:"required"`
}

// ImportCalendarRequest pulls events from the user's Google Calendar.
type ImportCalendarRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
	Days        int    `json:"days"`
}

// ImportCalendarResponse lists the imported events.
type ImportCalendarResponse struct {
	Events []models.CalendarEvent `json:"events"`
	Count  int                    `json:"count"`
}

// ExportCalendarRequest pushes the final schedule to Google Calendar.
type ExportCalendarRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// ExportCalendarResponse reports how many events were created.
type ExportCalendarResponse struct {
	Created int `json:"created"`
}
