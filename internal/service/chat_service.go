package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/lockin-app/lockin-api/internal/dto"
	"github.com/lockin-app/lockin-api/internal/llm"
	"github.com/lockin-app/lockin-api/internal/models"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

type chatCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	AppendChatMessage(ctx context.Context, key string, msg models.ChatMessage, limit int, ttl time.Duration) error
	ChatHistory(ctx context.Context, key string) ([]models.ChatMessage, error)
}

type chatUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateCustomPrompt(ctx context.Context, id, prompt string) error
}

// ChatConfig tunes the conversation window.
type ChatConfig struct {
	HistoryLimit int
	HistoryTTL   time.Duration
}

// ChatService drives iterative schedule refinement: each turn may carry an
// updated schedule proposal, which only takes effect on finalize.
type ChatService struct {
	schedules *ScheduleService
	users     chatUserRepository
	client    optimizerClient
	cache     chatCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    ChatConfig
}

// NewChatService constructs a ChatService.
func NewChatService(schedules *ScheduleService, users chatUserRepository, client optimizerClient, cache chatCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config ChatConfig) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = 10
	}
	return &ChatService{
		schedules: schedules,
		users:     users,
		client:    client,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

func chatHistoryKey(userID string) string { return "chat:history:" + userID }
func chatPendingKey(userID string) string { return "chat:pending:" + userID }

// Chat handles one refinement turn.
func (s *ChatService) Chat(ctx context.Context, userID string, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat payload")
	}

	current, err := s.schedules.ConfirmedSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.cache.ChatHistory(ctx, chatHistoryKey(userID))
	if err != nil {
		s.logger.Warn("failed to load chat history", zap.Error(err))
		history = nil
	}

	prompt := llm.BuildChatPrompt(current, history, req.Message)

	start := time.Now()
	raw, usage, err := s.client.Complete(ctx, llm.OptimizerSystemPrompt, prompt)
	s.metrics.ObserveLLMRequest("anthropic", "chat", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLLMTokens("anthropic", usage.InputTokens, usage.OutputTokens)

	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	reply := gjson.Get(payload, "message").String()
	if reply == "" {
		reply = "Okay."
	}

	var pending *models.Schedule
	if schedJSON := gjson.Get(payload, "schedule"); schedJSON.IsObject() {
		pending = models.EmptySchedule()
		if err := json.Unmarshal([]byte(schedJSON.Raw), pending); err != nil {
			s.logger.Warn("discarding malformed schedule proposal from chat turn", zap.Error(err))
			pending = nil
		}
	}

	now := time.Now().UTC()
	s.appendHistory(ctx, userID, models.ChatMessage{Role: models.ChatRoleUser, Content: req.Message, CreatedAt: now})
	s.appendHistory(ctx, userID, models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply, CreatedAt: now})

	if pending != nil {
		if err := s.cache.Set(ctx, chatPendingKey(userID), pending, s.config.HistoryTTL); err != nil {
			s.logger.Warn("failed to stash pending schedule", zap.Error(err))
		}
	}

	return &dto.ChatResponse{Message: reply, PendingSchedule: pending}, nil
}

// Finalize applies the pending schedule proposal, folds the conversation
// into the user's custom prompt, and clears the chat state.
func (s *ChatService) Finalize(ctx context.Context, userID string) (*dto.FinalizeChatResponse, error) {
	pending := models.EmptySchedule()
	err := s.cache.Get(ctx, chatPendingKey(userID), pending)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no pending schedule changes to finalize")
	}

	resp, err := s.schedules.ReplaceWorking(ctx, userID, pending)
	if err != nil {
		return nil, err
	}

	promptUpdated := s.updateCustomPrompt(ctx, userID)

	if err := s.cache.Delete(ctx, chatPendingKey(userID)); err != nil {
		s.logger.Warn("failed to clear pending schedule", zap.Error(err))
	}
	if err := s.cache.Delete(ctx, chatHistoryKey(userID)); err != nil {
		s.logger.Warn("failed to clear chat history", zap.Error(err))
	}

	return &dto.FinalizeChatResponse{Schedule: resp.Schedule, PromptUpdated: promptUpdated}, nil
}

// History returns the stored conversation, oldest first.
func (s *ChatService) History(ctx context.Context, userID string) (*dto.ChatHistoryResponse, error) {
	history, err := s.cache.ChatHistory(ctx, chatHistoryKey(userID))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chat history")
	}
	return &dto.ChatHistoryResponse{Messages: history}, nil
}

func (s *ChatService) appendHistory(ctx context.Context, userID string, msg models.ChatMessage) {
	if err := s.cache.AppendChatMessage(ctx, chatHistoryKey(userID), msg, s.config.HistoryLimit, s.config.HistoryTTL); err != nil {
		s.logger.Warn("failed to append chat message", zap.Error(err))
	}
}

// updateCustomPrompt asks the model to revise the user's standing
// instructions with what it learned from this conversation. Failures here
// never block finalization.
func (s *ChatService) updateCustomPrompt(ctx context.Context, userID string) bool {
	if s.users == nil {
		return false
	}
	history, err := s.cache.ChatHistory(ctx, chatHistoryKey(userID))
	if err != nil || len(history) == 0 {
		return false
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user for prompt update", zap.Error(err))
		return false
	}
	currentPrompt := ""
	if user.CustomPrompt != nil {
		currentPrompt = *user.CustomPrompt
	}

	start := time.Now()
	raw, usage, err := s.client.Complete(ctx, llm.OptimizerSystemPrompt, llm.BuildPromptUpdatePrompt(currentPrompt, history))
	s.metrics.ObserveLLMRequest("anthropic", "prompt_update", err, time.Since(start))
	if err != nil {
		s.logger.Warn("custom prompt update call failed", zap.Error(err))
		return false
	}
	s.metrics.RecordLLMTokens("anthropic", usage.InputTokens, usage.OutputTokens)

	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return false
	}
	updated := gjson.Get(payload, "custom_prompt").String()
	if updated == "" || updated == currentPrompt {
		return false
	}

	if err := s.users.UpdateCustomPrompt(ctx, userID, updated); err != nil {
		s.logger.Warn("failed to store updated custom prompt", zap.Error(err))
		return false
	}
	return true
}
