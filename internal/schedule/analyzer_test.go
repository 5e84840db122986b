package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lockin-app/lockin-api/internal/models"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func examWithPrepTask() *models.Schedule {
	return &models.Schedule{
		Meetings: []models.Meeting{
			{
				ID:              "m1",
				Description:     "biology exam",
				Type:            "exam",
				Time:            strPtr("14:00"),
				DurationMinutes: intPtr(90),
			},
		},
		Tasks: []models.Task{
			{
				ID:           "t1",
				Description:  "study for biology exam",
				Category:     "preparation",
				RelatedEvent: strPtr("biology exam"),
			},
		},
		CourseCodes: []string{},
	}
}

func TestFindQuestionsOrdering(t *testing.T) {
	s := &models.Schedule{
		Meetings: []models.Meeting{
			{ID: "m1", Description: "chemistry exam", Type: "exam"},
			{ID: "m2", Description: "study group", Type: "regular", Time: strPtr("16:00")},
		},
		Tasks: []models.Task{
			{ID: "t1", Description: "lab writeup", Category: "homework"},
			{ID: "t2", Description: "review notes", Category: "preparation"},
		},
	}

	questions := FindQuestions(s)
	require.Len(t, questions, 5)

	// meeting m1: time, duration, course_code; m2: duration; then task t2
	assert.Equal(t, []string{"time", "duration", "course_code", "duration", "course_code"}, questionTypes(questions))
	assert.Equal(t, "m1", questions[0].TargetID)
	assert.Equal(t, "What time is the chemistry exam?", questions[0].Question)
	assert.Equal(t, "How long is the chemistry exam?", questions[1].Question)
	assert.Equal(t, "What is the course code for the chemistry exam?", questions[2].Question)
	assert.Equal(t, "m2", questions[3].TargetID)
	assert.Equal(t, "t2", questions[4].TargetID)
	assert.Equal(t, "task", questions[4].TargetType)
}

func TestFindQuestionsDeterministic(t *testing.T) {
	s := examWithPrepTask()
	first := FindQuestions(s)
	second := FindQuestions(s)
	assert.Equal(t, first, second)
}

func TestFindQuestionsSuppressesLinkedPrepTask(t *testing.T) {
	s := examWithPrepTask()

	questions := FindQuestions(s)

	require.Len(t, questions, 1)
	assert.Equal(t, "course_code", questions[0].Type)
	assert.Equal(t, "meeting", questions[0].TargetType)
	assert.Equal(t, "m1", questions[0].TargetID)
}

func TestFindQuestionsAsksOrphanedPrepTask(t *testing.T) {
	s := examWithPrepTask()
	s.Tasks[0].RelatedEvent = strPtr("some other meeting")

	questions := FindQuestions(s)

	require.Len(t, questions, 2)
	assert.Equal(t, "m1", questions[0].TargetID)
	assert.Equal(t, "t1", questions[1].TargetID)
}

func TestFindQuestionsResolvedMeetingStillAsksTask(t *testing.T) {
	s := examWithPrepTask()
	s.Meetings[0].CourseCode = strPtr("BIO201")

	questions := FindQuestions(s)

	require.Len(t, questions, 1)
	assert.Equal(t, "t1", questions[0].TargetID)
}

func TestFindQuestionsIgnoresAmbiguousTimes(t *testing.T) {
	s := &models.Schedule{
		Meetings: []models.Meeting{
			{ID: "m1", Description: "lecture", Type: "regular", Time: strPtr("AMBIGUOUS:9:00"), DurationMinutes: intPtr(60)},
		},
	}

	assert.Empty(t, FindQuestions(s))
}

func TestFindQuestionsEmptySchedule(t *testing.T) {
	assert.Empty(t, FindQuestions(models.EmptySchedule()))
	assert.Empty(t, FindQuestions(nil))
}

func TestRefreshMissingInfo(t *testing.T) {
	s := &models.Schedule{
		Meetings: []models.Meeting{
			{ID: "m1", Description: "exam", Type: "exam"},
			{ID: "m2", Description: "lecture", Type: "regular", Time: strPtr("10:00"), DurationMinutes: intPtr(60)},
		},
		Tasks: []models.Task{
			{ID: "t1", Description: "prep", Category: "preparation"},
			{ID: "t2", Description: "homework", Category: "homework"},
		},
	}

	RefreshMissingInfo(s)

	assert.Equal(t, []string{"time", "duration_minutes", "course_code"}, s.Meetings[0].MissingInfo)
	assert.Empty(t, s.Meetings[1].MissingInfo)
	assert.Equal(t, []string{"course_code"}, s.Tasks[0].MissingInfo)
	assert.Empty(t, s.Tasks[1].MissingInfo)
}

func questionTypes(questions []models.Question) []string {
	out := make([]string, len(questions))
	for i, q := range questions {
		out[i] = q.Type
	}
	return out
}
