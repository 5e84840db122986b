package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockin-app/lockin-api/internal/models"
)

func TestEnsureIDsAssignsMissingOnly(t *testing.T) {
	s := &models.Schedule{
		Meetings: []models.Meeting{
			{ID: "keep-me", Description: "lecture"},
			{Description: "lab"},
		},
		Tasks: []models.Task{
			{Description: "reading"},
		},
	}

	EnsureIDs(s)

	assert.Equal(t, "keep-me", s.Meetings[0].ID)
	require.NotEmpty(t, s.Meetings[1].ID)
	require.NotEmpty(t, s.Tasks[0].ID)
	assert.NotEqual(t, s.Meetings[1].ID, s.Tasks[0].ID)
}

func TestEnsureIDsIdempotent(t *testing.T) {
	s := &models.Schedule{
		Meetings: []models.Meeting{{Description: "lecture"}},
		Tasks:    []models.Task{{Description: "reading"}},
	}

	EnsureIDs(s)
	meetingID := s.Meetings[0].ID
	taskID := s.Tasks[0].ID

	EnsureIDs(s)
	assert.Equal(t, meetingID, s.Meetings[0].ID)
	assert.Equal(t, taskID, s.Tasks[0].ID)
}
