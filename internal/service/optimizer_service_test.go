package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockin-app/lockin-api/internal/dto"
	"github.com/lockin-app/lockin-api/internal/llm"
	"github.com/lockin-app/lockin-api/internal/models"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

type scriptedModel struct {
	responses []string
	usage     llm.Usage
	err       error

	mu      sync.Mutex
	calls   int
	prompts []string
	systems []string
}

func (m *scriptedModel) Complete(_ context.Context, system, prompt string) (string, llm.Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systems = append(m.systems, system)
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", llm.Usage{}, m.err
	}
	idx := m.calls
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.calls++
	return m.responses[idx], m.usage, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type stubUserFinder struct {
	user *models.User
	err  error
}

func (r *stubUserFinder) FindByID(context.Context, string) (*models.User, error) {
	return r.user, r.err
}

func confirmedScheduleService(t *testing.T, userID string) *ScheduleService {
	t.Helper()
	svc := NewScheduleService(newMemorySnapshotRepo(), &stubParser{}, nil, nil, nil)
	_, err := svc.Store(context.Background(), userID, dto.StoreScheduleRequest{Schedule: completeSchedule(), Final: true})
	require.NoError(t, err)
	return svc
}

func TestOptimizerServiceOptimize(t *testing.T) {
	schedules := confirmedScheduleService(t, "u1")
	model := &scriptedModel{
		responses: []string{mustJSON(t, completeSchedule())},
		usage:     llm.Usage{InputTokens: 200, OutputTokens: 400},
	}
	cache := newMemoryCache()
	user := &models.User{ID: "u1", Preferences: json.RawMessage(`{"wake_time":"07:00"}`)}

	svc := NewOptimizerService(schedules, &stubUserFinder{user: user}, nil, model, cache, nil, nil, time.Minute)

	resp, err := svc.Optimize(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	require.Len(t, resp.Schedule.Meetings, 1)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "algorithms lecture")
	assert.Contains(t, model.prompts[0], "07:00")
	assert.Equal(t, llm.OptimizerSystemPrompt, model.systems[0])

	assert.Contains(t, cache.entries, "schedule:optimized:u1")
}

func TestOptimizerServiceCacheHit(t *testing.T) {
	cache := newMemoryCache()
	require.NoError(t, cache.Set(context.Background(), "schedule:optimized:u1", completeSchedule(), time.Minute))

	model := &scriptedModel{responses: []string{"unused"}}
	svc := NewOptimizerService(confirmedScheduleService(t, "u1"), nil, nil, model, cache, nil, nil, time.Minute)

	resp, err := svc.Optimize(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Zero(t, model.calls)
}

func TestOptimizerServiceNoConfirmedSchedule(t *testing.T) {
	schedules := NewScheduleService(newMemorySnapshotRepo(), &stubParser{}, nil, nil, nil)
	svc := NewOptimizerService(schedules, nil, nil, &scriptedModel{}, nil, nil, nil, time.Minute)

	_, err := svc.Optimize(context.Background(), "u1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrEmptySchedule.Code, appErr.Code)
}

func TestOptimizerServiceModelFailure(t *testing.T) {
	model := &scriptedModel{err: errors.New("upstream timeout")}
	svc := NewOptimizerService(confirmedScheduleService(t, "u1"), nil, nil, model, nil, nil, nil, time.Minute)

	_, err := svc.Optimize(context.Background(), "u1")
	require.Error(t, err)
}

func TestOptimizerServiceEmptyModelSchedule(t *testing.T) {
	model := &scriptedModel{responses: []string{`{"meetings":[],"tasks":[],"course_codes":[]}`}}
	svc := NewOptimizerService(confirmedScheduleService(t, "u1"), nil, nil, model, nil, nil, nil, time.Minute)

	_, err := svc.Optimize(context.Background(), "u1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
}

func TestOptimizerServiceInvalidate(t *testing.T) {
	cache := newMemoryCache()
	require.NoError(t, cache.Set(context.Background(), "schedule:optimized:u1", completeSchedule(), time.Minute))

	svc := NewOptimizerService(nil, nil, nil, nil, cache, nil, nil, time.Minute)
	svc.Invalidate(context.Background(), "u1")

	assert.NotContains(t, cache.entries, "schedule:optimized:u1")
}
