package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lockin-app/lockin-api/internal/models"
)

// ScheduleRepository persists per-user schedule snapshots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new instance of ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Find returns the snapshot row for a user, or sql.ErrNoRows.
func (r *ScheduleRepository) Find(ctx context.Context, userID string) (*models.ScheduleSnapshot, error) {
	const query = `SELECT user_id, latest_schedule, parsed_schedule, confirmed_at, imported_calendar, updated_at FROM schedule_snapshots WHERE user_id = $1 LIMIT 1`
	var snapshot models.ScheduleSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find schedule snapshot: %w", err)
	}
	return &snapshot, nil
}

// SaveLatest upserts the user's latest working schedule document.
func (r *ScheduleRepository) SaveLatest(ctx context.Context, userID string, schedule json.RawMessage) error {
	const query = `INSERT INTO schedule_snapshots (user_id, latest_schedule, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET latest_schedule = EXCLUDED.latest_schedule, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userID, schedule, time.Now().UTC()); err != nil {
		return fmt.Errorf("save latest schedule: %w", err)
	}
	return nil
}

// SaveConfirmed upserts the confirmed schedule document and stamps the
// confirmation time.
func (r *ScheduleRepository) SaveConfirmed(ctx context.Context, userID string, schedule json.RawMessage) error {
	now := time.Now().UTC()
	const query = `INSERT INTO schedule_snapshots (user_id, parsed_schedule, confirmed_at, updated_at) VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET parsed_schedule = EXCLUDED.parsed_schedule, confirmed_at = EXCLUDED.confirmed_at, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userID, schedule, now); err != nil {
		return fmt.Errorf("save confirmed schedule: %w", err)
	}
	return nil
}

// SaveImportedCalendar upserts the user's imported Google Calendar events.
func (r *ScheduleRepository) SaveImportedCalendar(ctx context.Context, userID string, events json.RawMessage) error {
	const query = `INSERT INTO schedule_snapshots (user_id, imported_calendar, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET imported_calendar = EXCLUDED.imported_calendar, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, userID, events, time.Now().UTC()); err != nil {
		return fmt.Errorf("save imported calendar: %w", err)
	}
	return nil
}

// Clear removes the user's snapshot row entirely.
func (r *ScheduleRepository) Clear(ctx context.Context, userID string) error {
	const query = `DELETE FROM schedule_snapshots WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear schedule snapshot: %w", err)
	}
	return nil
}
