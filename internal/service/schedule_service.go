package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lockin-app/lockin-api/internal/dto"
	"github.com/lockin-app/lockin-api/internal/llm"
	"github.com/lockin-app/lockin-api/internal/models"
	"github.com/lockin-app/lockin-api/internal/schedule"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

type scheduleSnapshotRepository interface {
	Find(ctx context.Context, userID string) (*models.ScheduleSnapshot, error)
	SaveLatest(ctx context.Context, userID string, schedule json.RawMessage) error
	SaveConfirmed(ctx context.Context, userID string, schedule json.RawMessage) error
	Clear(ctx context.Context, userID string) error
}

type parserClient interface {
	Complete(ctx context.Context, prompt string) (string, llm.Usage, error)
}

// session pairs the in-memory store with its answer applicator for one user.
type session struct {
	store      *schedule.Store
	applicator *schedule.Applicator
}

// ScheduleService runs the clarification loop: parse, question, answer,
// converge. It keys the core's single-session stores by user and mirrors
// state into Postgres so sessions survive restarts.
type ScheduleService struct {
	repo      scheduleSnapshotRepository
	parser    parserClient
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo scheduleSnapshotRepository, parser parserClient, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleService{
		repo:      repo,
		parser:    parser,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		sessions:  make(map[string]*session),
	}
}

// Parse turns free text into a schedule via the parser model, runs it
// through identity assignment and time normalization, and reports the
// clarifying questions that remain.
func (s *ScheduleService) Parse(ctx context.Context, userID string, req dto.ParseScheduleRequest) (*dto.ScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parse payload")
	}

	start := time.Now()
	raw, usage, err := s.parser.Complete(ctx, llm.BuildParsePrompt(req.Text))
	s.metrics.ObserveLLMRequest("openai", "parse", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLLMTokens("openai", usage.InputTokens, usage.OutputTokens)

	payload, err := llm.ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	parsed := models.EmptySchedule()
	if err := json.Unmarshal([]byte(payload), parsed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "parser model returned malformed schedule")
	}

	schedule.EnsureIDs(parsed)
	schedule.NormalizeScheduleTimes(parsed)
	schedule.RefreshMissingInfo(parsed)

	return s.adopt(ctx, userID, parsed)
}

// Get returns the current schedule, preferring the confirmed final instance.
func (s *ScheduleService) Get(ctx context.Context, userID string) (*dto.ScheduleResponse, error) {
	sess, err := s.sessionFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := sess.store.Load(true)
	if current.IsEmpty() {
		current = sess.store.Load(false)
	}
	if current.IsEmpty() {
		return nil, appErrors.Clone(appErrors.ErrEmptySchedule, "no schedule has been parsed yet")
	}

	questions := schedule.FindQuestions(current)
	return buildScheduleResponse(current, questions), nil
}

// Store replaces the selected schedule instance wholesale.
func (s *ScheduleService) Store(ctx context.Context, userID string, req dto.StoreScheduleRequest) (*dto.ScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid store payload")
	}

	incoming := req.Schedule.Clone()
	schedule.EnsureIDs(incoming)
	schedule.NormalizeScheduleTimes(incoming)
	schedule.RefreshMissingInfo(incoming)

	if req.Final {
		sess, err := s.sessionFor(ctx, userID)
		if err != nil {
			return nil, err
		}
		sess.store.Save(incoming, true)
		s.persistConfirmed(ctx, userID, incoming)
		return buildScheduleResponse(incoming, schedule.FindQuestions(incoming)), nil
	}

	return s.adopt(ctx, userID, incoming)
}

// Answer applies one clarifying-question answer and persists the result.
func (s *ScheduleService) Answer(ctx context.Context, userID string, req dto.AnswerRequest) (*dto.ScheduleResponse, error) {
	sess, err := s.sessionFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := sess.applicator.Apply(schedule.AnswerInput{
		ItemID:     req.ItemID,
		Type:       req.Type,
		Answer:     req.Answer,
		Target:     req.Target,
		TargetType: req.TargetType,
	})
	if err != nil {
		return nil, err
	}

	s.persistLatest(ctx, userID, result.Schedule)
	if result.ReadyForOptimization {
		s.persistConfirmed(ctx, userID, result.Schedule)
	}

	return &dto.ScheduleResponse{
		Schedule:             result.Schedule,
		Questions:            result.Questions,
		Status:               statusFor(result.HasMoreQuestions),
		HasMoreQuestions:     result.HasMoreQuestions,
		ReadyForOptimization: result.ReadyForOptimization,
	}, nil
}

// Reset clears the in-memory session and the persisted snapshot.
func (s *ScheduleService) Reset(ctx context.Context, userID string) error {
	sess, err := s.sessionFor(ctx, userID)
	if err != nil {
		return err
	}
	sess.store.Reset()

	if s.repo != nil {
		if err := s.repo.Clear(ctx, userID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear persisted schedule")
		}
	}
	return nil
}

// ConfirmedSchedule returns the final schedule for optimization or export.
func (s *ScheduleService) ConfirmedSchedule(ctx context.Context, userID string) (*models.Schedule, error) {
	sess, err := s.sessionFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	final := sess.store.Load(true)
	if final.IsEmpty() {
		return nil, appErrors.Clone(appErrors.ErrEmptySchedule, "no confirmed schedule available")
	}
	return final, nil
}

// ReplaceWorking swaps in an externally produced schedule (chat refinement,
// optimizer output) as the new working and final state.
func (s *ScheduleService) ReplaceWorking(ctx context.Context, userID string, updated *models.Schedule) (*dto.ScheduleResponse, error) {
	incoming := updated.Clone()
	schedule.EnsureIDs(incoming)
	schedule.NormalizeScheduleTimes(incoming)
	schedule.RefreshMissingInfo(incoming)
	return s.adopt(ctx, userID, incoming)
}

// adopt installs a schedule as the user's working state, promotes it to
// final when complete, and mirrors both to Postgres.
func (s *ScheduleService) adopt(ctx context.Context, userID string, incoming *models.Schedule) (*dto.ScheduleResponse, error) {
	sess, err := s.sessionFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	questions := schedule.FindQuestions(incoming)
	ready := len(questions) == 0 && !incoming.IsEmpty()

	sess.store.Save(incoming, false)
	s.persistLatest(ctx, userID, incoming)
	if ready {
		sess.store.Save(incoming, true)
		s.persistConfirmed(ctx, userID, incoming)
	}

	return buildScheduleResponse(incoming, questions), nil
}

// sessionFor returns the user's session, hydrating it from the persisted
// snapshot on first access.
func (s *ScheduleService) sessionFor(ctx context.Context, userID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}

	store := schedule.NewStore()
	sess := &session{store: store, applicator: schedule.NewApplicator(store)}

	if s.repo != nil {
		snapshot, err := s.repo.Find(ctx, userID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load persisted schedule")
		}
		if snapshot != nil {
			if working := decodeSchedule(snapshot.LatestSchedule, s.logger); working != nil {
				store.Save(working, false)
			}
			if final := decodeSchedule(snapshot.ParsedSchedule, s.logger); final != nil {
				store.Save(final, true)
			}
		}
	}

	s.sessions[userID] = sess
	return sess, nil
}

func (s *ScheduleService) persistLatest(ctx context.Context, userID string, sched *models.Schedule) {
	if s.repo == nil {
		return
	}
	payload, err := json.Marshal(sched)
	if err != nil {
		s.logger.Warn("failed to encode schedule for persistence", zap.Error(err))
		return
	}
	if err := s.repo.SaveLatest(ctx, userID, payload); err != nil {
		s.logger.Warn("failed to persist working schedule", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *ScheduleService) persistConfirmed(ctx context.Context, userID string, sched *models.Schedule) {
	if s.repo == nil {
		return
	}
	payload, err := json.Marshal(sched)
	if err != nil {
		s.logger.Warn("failed to encode schedule for persistence", zap.Error(err))
		return
	}
	if err := s.repo.SaveConfirmed(ctx, userID, payload); err != nil {
		s.logger.Warn("failed to persist confirmed schedule", zap.String("user_id", userID), zap.Error(err))
	}
}

func decodeSchedule(raw json.RawMessage, logger *zap.Logger) *models.Schedule {
	if len(raw) == 0 {
		return nil
	}
	sched := models.EmptySchedule()
	if err := json.Unmarshal(raw, sched); err != nil {
		logger.Warn("skipping malformed persisted schedule", zap.Error(err))
		return nil
	}
	if sched.IsEmpty() {
		return nil
	}
	return sched
}

func buildScheduleResponse(sched *models.Schedule, questions []models.Question) *dto.ScheduleResponse {
	hasMore := len(questions) > 0
	return &dto.ScheduleResponse{
		Schedule:             sched,
		Questions:            questions,
		Status:               statusFor(hasMore),
		HasMoreQuestions:     hasMore,
		ReadyForOptimization: !hasMore && !sched.IsEmpty(),
	}
}

func statusFor(hasMore bool) string {
	if hasMore {
		return dto.StatusQuestionsNeeded
	}
	return dto.StatusComplete
}
