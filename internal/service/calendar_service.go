package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lockin-app/lockin-api/internal/dto"
	"github.com/lockin-app/lockin-api/internal/models"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleCalendarURL = "https://www.googleapis.com/calendar/v3/calendars/primary/events"
)

type calendarSnapshotRepository interface {
	SaveImportedCalendar(ctx context.Context, userID string, events json.RawMessage) error
}

// CalendarConfig holds the Google OAuth client settings.
type CalendarConfig struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

// CalendarService is thin OAuth and event CRUD glue over the Google
// Calendar REST API. Imported events are persisted so the optimizer can
// plan around them.
type CalendarService struct {
	snapshots  calendarSnapshotRepository
	schedules  *ScheduleService
	httpClient *http.Client
	validator  *validator.Validate
	logger     *zap.Logger
	config     CalendarConfig

	authURL     string
	tokenURL    string
	calendarURL string
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(snapshots calendarSnapshotRepository, schedules *ScheduleService, validate *validator.Validate, logger *zap.Logger, config CalendarConfig) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CalendarService{
		snapshots:   snapshots,
		schedules:   schedules,
		httpClient:  &http.Client{Timeout: timeout},
		validator:   validate,
		logger:      logger,
		config:      config,
		authURL:     googleAuthURL,
		tokenURL:    googleTokenURL,
		calendarURL: googleCalendarURL,
	}
}

// AuthorizeURL builds the Google consent URL for the given redirect URI.
func (s *CalendarService) AuthorizeURL(redirectURI string) (*dto.AuthorizeURLResponse, error) {
	if s.config.ClientID == "" {
		return nil, appErrors.Clone(appErrors.ErrInternal, "google calendar integration is not configured")
	}
	if redirectURI == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "redirect_uri is required")
	}

	state := uuid.NewString()
	params := url.Values{
		"client_id":     {s.config.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(s.config.Scopes, " ")},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
		"state":         {state},
	}
	return &dto.AuthorizeURLResponse{URL: s.authURL + "?" + params.Encode(), State: state}, nil
}

// ExchangeCode completes the OAuth flow, trading the code for tokens.
func (s *CalendarService) ExchangeCode(ctx context.Context, req dto.OAuthCallbackRequest) (*models.GoogleTokens, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid callback payload")
	}

	form := url.Values{
		"code":          {req.Code},
		"client_id":     {s.config.ClientID},
		"client_secret": {s.config.ClientSecret},
		"redirect_uri":  {req.RedirectURI},
		"grant_type":    {"authorization_code"},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build token request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "google token exchange failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "read token response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("google token exchange returned HTTP %d", resp.StatusCode))
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode token response")
	}
	if tokenResp.AccessToken == "" {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "google returned no access token")
	}

	return &models.GoogleTokens{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresAt:    time.Now().UTC().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}, nil
}

// Import pulls upcoming events from the user's primary calendar and
// persists them for the optimizer.
func (s *CalendarService) Import(ctx context.Context, userID string, req dto.ImportCalendarRequest) (*dto.ImportCalendarResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import payload")
	}

	days := req.Days
	if days <= 0 {
		days = 7
	}
	now := time.Now().UTC()

	params := url.Values{
		"timeMin":      {now.Format(time.RFC3339)},
		"timeMax":      {now.AddDate(0, 0, days).Format(time.RFC3339)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.calendarURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build calendar request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "google calendar list failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "read calendar response")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "google access token is invalid or expired")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("google calendar list returned HTTP %d", resp.StatusCode))
	}

	events, err := decodeGoogleEvents(body)
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		payload, err := json.Marshal(events)
		if err == nil {
			if err := s.snapshots.SaveImportedCalendar(ctx, userID, payload); err != nil {
				s.logger.Warn("failed to persist imported calendar", zap.Error(err))
			}
		}
	}

	return &dto.ImportCalendarResponse{Events: events, Count: len(events)}, nil
}

// Export pushes the confirmed schedule's meetings into the user's primary
// calendar, one insert per event.
func (s *CalendarService) Export(ctx context.Context, userID string, req dto.ExportCalendarRequest) (*dto.ExportCalendarResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	confirmed, err := s.schedules.ConfirmedSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}

	events := UpcomingEvents(confirmed, time.Now().UTC(), 7)
	created := 0
	for _, event := range events {
		if err := s.insertEvent(ctx, req.AccessToken, event); err != nil {
			s.logger.Warn("failed to insert calendar event", zap.String("summary", event.Summary), zap.Error(err))
			continue
		}
		created++
	}

	if created == 0 && len(events) > 0 {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "no events could be exported to google calendar")
	}
	return &dto.ExportCalendarResponse{Created: created}, nil
}

func (s *CalendarService) insertEvent(ctx context.Context, accessToken string, event models.CalendarEvent) error {
	payload, err := json.Marshal(map[string]interface{}{
		"summary":     event.Summary,
		"description": event.Description,
		"location":    event.Location,
		"start":       map[string]string{"dateTime": event.Start.Format(time.RFC3339)},
		"end":         map[string]string{"dateTime": event.End.Format(time.RFC3339)},
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.calendarURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google event insert returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func decodeGoogleEvents(body []byte) ([]models.CalendarEvent, error) {
	var listResp struct {
		Items []struct {
			ID          string `json:"id"`
			Summary     string `json:"summary"`
			Description string `json:"description"`
			Location    string `json:"location"`
			Start       struct {
				DateTime string `json:"dateTime"`
				Date     string `json:"date"`
			} `json:"start"`
			End struct {
				DateTime string `json:"dateTime"`
				Date     string `json:"date"`
			} `json:"end"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &listResp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode calendar response")
	}

	events := make([]models.CalendarEvent, 0, len(listResp.Items))
	for _, item := range listResp.Items {
		event := models.CalendarEvent{
			ID:          item.ID,
			Summary:     item.Summary,
			Description: item.Description,
			Location:    item.Location,
		}
		switch {
		case item.Start.DateTime != "":
			start, err := time.Parse(time.RFC3339, item.Start.DateTime)
			if err != nil {
				continue
			}
			event.Start = start
			if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				event.End = end
			}
		case item.Start.Date != "":
			start, err := time.Parse("2006-01-02", item.Start.Date)
			if err != nil {
				continue
			}
			event.Start = start
			event.End = start.AddDate(0, 0, 1)
			event.AllDay = true
		default:
			continue
		}
		events = append(events, event)
	}
	return events, nil
}
