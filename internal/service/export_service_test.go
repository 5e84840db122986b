package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockin-app/lockin-api/internal/models"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

func TestUpcomingEventsMapsWeekdays(t *testing.T) {
	// A Monday.
	from := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	sched := &models.Schedule{
		Meetings: []models.Meeting{
			{ID: "m1", Description: "algorithms lecture", Day: strp("Monday"), Time: strp("10:00"), DurationMinutes: intp(90)},
			{ID: "m2", Description: "stats tutorial", Day: strp("Wednesday"), Time: strp("14:30")},
		},
		Tasks: []models.Task{
			{ID: "t1", Description: "problem set", Day: strp("friday"), Time: strp("16:00"), DurationMinutes: intp(120)},
		},
	}

	events := UpcomingEvents(sched, from, 7)
	require.Len(t, events, 3)

	assert.Equal(t, time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC), events[0].Start)
	assert.Equal(t, time.Date(2025, time.March, 3, 11, 30, 0, 0, time.UTC), events[0].End)
	assert.Equal(t, time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC), events[1].Start)
	// Missing duration defaults to an hour.
	assert.Equal(t, time.Hour, events[1].End.Sub(events[1].Start))
	assert.Equal(t, time.Friday, events[2].Start.Weekday())
}

func TestUpcomingEventsRollsPastOccurrenceForward(t *testing.T) {
	// Monday at noon, after the 10:00 slot has passed.
	from := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

	sched := &models.Schedule{
		Meetings: []models.Meeting{
			{ID: "m1", Description: "algorithms lecture", Day: strp("Monday"), Time: strp("10:00")},
		},
	}

	events := UpcomingEvents(sched, from, 14)
	require.Len(t, events, 1)
	assert.Equal(t, time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC), events[0].Start)
}

func TestUpcomingEventsSkipsUnresolvedItems(t *testing.T) {
	from := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	sched := &models.Schedule{
		Meetings: []models.Meeting{
			{ID: "m1", Description: "no day", Time: strp("10:00")},
			{ID: "m2", Description: "no time", Day: strp("Tuesday")},
			{ID: "m3", Description: "ambiguous", Day: strp("Tuesday"), Time: strp("AMBIGUOUS:3")},
			{ID: "m4", Description: "bad day", Day: strp("someday"), Time: strp("10:00")},
		},
	}

	assert.Empty(t, UpcomingEvents(sched, from, 7))
	assert.Empty(t, UpcomingEvents(nil, from, 7))
}

func TestUpcomingEventsHonorsHorizon(t *testing.T) {
	// Monday; the Sunday slot is six days out.
	from := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	sched := &models.Schedule{
		Meetings: []models.Meeting{
			{ID: "m1", Description: "study group", Day: strp("Sunday"), Time: strp("10:00")},
		},
	}

	assert.Len(t, UpcomingEvents(sched, from, 7), 1)
	assert.Empty(t, UpcomingEvents(sched, from, 3))
}

func exportService(t *testing.T, enabled bool) *ExportService {
	t.Helper()
	return NewExportService(confirmedScheduleService(t, "u1"), nil, ExportsConfig{Enabled: enabled})
}

func TestExportServiceRenderCSV(t *testing.T) {
	svc := exportService(t, true)

	result, err := svc.Render(context.Background(), "u1", FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "schedule.csv", result.Filename)

	body := string(result.Content)
	assert.Contains(t, body, "Kind,Description,Day")
	assert.Contains(t, body, "algorithms lecture")
	assert.Contains(t, body, "Monday")
}

func TestExportServiceRenderPDF(t *testing.T) {
	svc := exportService(t, true)

	result, err := svc.Render(context.Background(), "u1", FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportServiceRenderICS(t *testing.T) {
	svc := exportService(t, true)

	result, err := svc.Render(context.Background(), "u1", FormatICS)
	require.NoError(t, err)

	assert.Equal(t, "text/calendar", result.ContentType)

	body := string(result.Content)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:algorithms lecture")
	assert.Contains(t, body, "UID:m1")
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := exportService(t, true)

	_, err := svc.Render(context.Background(), "u1", ExportFormat("xlsx"))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExportServiceDisabled(t *testing.T) {
	svc := exportService(t, false)

	_, err := svc.Render(context.Background(), "u1", FormatCSV)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestExportServiceNoConfirmedSchedule(t *testing.T) {
	schedules := NewScheduleService(newMemorySnapshotRepo(), &stubParser{}, nil, nil, nil)
	svc := NewExportService(schedules, nil, ExportsConfig{Enabled: true})

	_, err := svc.Render(context.Background(), "u1", FormatCSV)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrEmptySchedule.Code, appErr.Code)
}
