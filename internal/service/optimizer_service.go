package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/lockin-app/lockin-api/internal/dto"
	"github.com/lockin-app/lockin-api/internal/llm"
	"github.com/lockin-app/lockin-api/internal/models"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

type optimizerClient interface {
	Complete(ctx context.Context, system, prompt string) (string, llm.Usage, error)
}

type optimizerUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type optimizerCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// OptimizerService asks the optimizer model to lay the confirmed schedule
// out into concrete slots, honoring preferences and imported calendar
// events. Results are cached briefly since runs are slow and expensive.
type OptimizerService struct {
	schedules *ScheduleService
	users     optimizerUserRepository
	snapshots scheduleSnapshotRepository
	client    optimizerClient
	cache     optimizerCache
	metrics   *MetricsService
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewOptimizerService constructs an OptimizerService.
func NewOptimizerService(schedules *ScheduleService, users optimizerUserRepository, snapshots scheduleSnapshotRepository, client optimizerClient, cache optimizerCache, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *OptimizerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &OptimizerService{
		schedules: schedules,
		users:     users,
		snapshots: snapshots,
		client:    client,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

func optimizedCacheKey(userID string) string {
	return "schedule:optimized:" + userID
}

// Optimize returns an optimized layout of the user's confirmed schedule.
func (s *OptimizerService) Optimize(ctx context.Context, userID string) (*dto.OptimizeResponse, error) {
	if s.cache != nil {
		cached := models.EmptySchedule()
		if err := s.cache.Get(ctx, optimizedCacheKey(userID), cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &dto.OptimizeResponse{Schedule: cached, Cached: true}, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	confirmed, err := s.schedules.ConfirmedSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs, customPrompt := s.loadUserContext(ctx, userID)
	imported := s.loadImportedEvents(ctx, userID)

	prompt := llm.BuildOptimizePrompt(confirmed, prefs, imported, customPrompt)

	start := time.Now()
	raw, usage, err := s.client.Complete(ctx, llm.OptimizerSystemPrompt, prompt)
	s.metrics.ObserveLLMRequest("anthropic", "optimize", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLLMTokens("anthropic", usage.InputTokens, usage.OutputTokens)

	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	optimized := models.EmptySchedule()
	if err := json.Unmarshal([]byte(payload), optimized); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "optimizer model returned malformed schedule")
	}
	if optimized.IsEmpty() {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "optimizer model returned an empty schedule")
	}

	if _, err := s.schedules.ReplaceWorking(ctx, userID, optimized); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, optimizedCacheKey(userID), optimized, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache optimized schedule", zap.Error(err))
		}
	}

	return &dto.OptimizeResponse{Schedule: optimized}, nil
}

// Invalidate drops the cached optimization for a user.
func (s *OptimizerService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, optimizedCacheKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate optimized schedule cache", zap.Error(err))
	}
}

func (s *OptimizerService) loadUserContext(ctx context.Context, userID string) (*models.Preferences, string) {
	if s.users == nil {
		return nil, ""
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user for optimization", zap.String("user_id", userID), zap.Error(err))
		return nil, ""
	}

	var prefs *models.Preferences
	if len(user.Preferences) > 0 {
		prefs = &models.Preferences{}
		if err := json.Unmarshal(user.Preferences, prefs); err != nil {
			s.logger.Warn("skipping malformed stored preferences", zap.Error(err))
			prefs = nil
		}
	}

	customPrompt := ""
	if user.CustomPrompt != nil {
		customPrompt = *user.CustomPrompt
	}
	return prefs, customPrompt
}

func (s *OptimizerService) loadImportedEvents(ctx context.Context, userID string) []models.CalendarEvent {
	if s.snapshots == nil {
		return nil
	}
	snapshot, err := s.snapshots.Find(ctx, userID)
	if err != nil || snapshot == nil || len(snapshot.ImportedCalendar) == 0 {
		return nil
	}
	var events []models.CalendarEvent
	if err := json.Unmarshal(snapshot.ImportedCalendar, &events); err != nil {
		s.logger.Warn("skipping malformed imported calendar", zap.Error(err))
		return nil
	}
	return events
}
