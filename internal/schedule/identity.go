package schedule

import (
	"github.com/google/uuid"

	"github.com/lockin-app/lockin-api/internal/models"
)

// EnsureIDs assigns a UUID to every meeting and task that lacks one.
// Existing IDs are never rewritten, so repeated calls are no-ops.
func EnsureIDs(s *models.Schedule) {
	if s == nil {
		return
	}
	for i := range s.Meetings {
		if s.Meetings[i].ID == "" {
			s.Meetings[i].ID = uuid.NewString()
		}
	}
	for i := range s.Tasks {
		if s.Tasks[i].ID == "" {
			s.Tasks[i].ID = uuid.NewString()
		}
	}
}
