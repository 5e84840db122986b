package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSnapshot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"user_id", "latest_schedule", "parsed_schedule", "confirmed_at", "imported_calendar", "updated_at"}).
		AddRow("u1", []byte(`{"meetings":[]}`), nil, nil, nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, latest_schedule, parsed_schedule, confirmed_at, imported_calendar, updated_at FROM schedule_snapshots WHERE user_id = $1 LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(rows)

	snapshot, err := repo.Find(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", snapshot.UserID)
	assert.JSONEq(t, `{"meetings":[]}`, string(snapshot.LatestSchedule))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSnapshotMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery("SELECT .* FROM schedule_snapshots").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSaveLatestUpserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO schedule_snapshots .*ON CONFLICT \\(user_id\\) DO UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveLatest(context.Background(), "u1", []byte(`{"meetings":[]}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveConfirmedStampsTime(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO schedule_snapshots .*parsed_schedule").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveConfirmed(context.Background(), "u1", []byte(`{"meetings":[]}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearSnapshot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_snapshots WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Clear(context.Background(), "u1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
