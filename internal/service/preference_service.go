package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lockin-app/lockin-api/internal/dto"
	"github.com/lockin-app/lockin-api/internal/models"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

type preferenceUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdatePreferences(ctx context.Context, id string, preferences json.RawMessage) error
}

// PreferenceService manages the onboarding questionnaire answers.
type PreferenceService struct {
	repo      preferenceUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(repo preferenceUserRepository, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PreferenceService{repo: repo, validator: validate, logger: logger}
}

// Get returns the stored preferences for a user.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*dto.PreferencesResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	resp := &dto.PreferencesResponse{Completed: user.PreferencesCompleted}
	if len(user.Preferences) > 0 {
		prefs := &models.Preferences{}
		if err := json.Unmarshal(user.Preferences, prefs); err != nil {
			s.logger.Warn("stored preferences are malformed", zap.String("user_id", userID), zap.Error(err))
		} else {
			resp.Preferences = prefs
		}
	}
	return resp, nil
}

// Update stores the questionnaire answers and marks onboarding complete.
func (s *PreferenceService) Update(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*dto.PreferencesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferences payload")
	}

	payload, err := json.Marshal(req.Preferences)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode preferences")
	}

	if err := s.repo.UpdatePreferences(ctx, userID, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store preferences")
	}

	prefs := req.Preferences
	return &dto.PreferencesResponse{Preferences: &prefs, Completed: true}, nil
}
