package schedule

import (
	"fmt"

	"github.com/lockin-app/lockin-api/internal/models"
)

// courseCodeMeetingTypes are the meeting types whose course code is required.
var courseCodeMeetingTypes = map[string]bool{
	string(models.MeetingExam):         true,
	string(models.MeetingPresentation): true,
}

// FindQuestions scans a schedule and returns the ordered clarifying questions
// for every unresolved field. The result is deterministic: meetings before
// tasks, schedule order within each, and per meeting time before duration
// before course code.
//
// A preparation task's course-code question is suppressed when its
// related_event matches the description of a meeting that is itself being
// asked for a course code; the meeting's answer propagates to the task.
func FindQuestions(s *models.Schedule) []models.Question {
	questions := []models.Question{}
	if s == nil {
		return questions
	}

	// Meetings missing a required course code, keyed by description, drive
	// task-level suppression. Matching is by description string, not ID.
	askedCourseByDescription := map[string]bool{}
	for _, m := range s.Meetings {
		if meetingNeedsCourseCode(m) {
			askedCourseByDescription[m.Description] = true
		}
	}

	for _, m := range s.Meetings {
		if !hasTime(m.Time) {
			questions = append(questions, models.Question{
				Type:       models.FieldTime,
				Question:   fmt.Sprintf("What time is the %s?", m.Description),
				Field:      "time",
				Target:     m.Description,
				TargetType: models.TargetMeeting,
				TargetID:   m.ID,
			})
		}
		if !hasDuration(m.DurationMinutes) {
			questions = append(questions, models.Question{
				Type:       models.FieldDuration,
				Question:   fmt.Sprintf("How long is the %s?", m.Description),
				Field:      "duration_minutes",
				Target:     m.Description,
				TargetType: models.TargetMeeting,
				TargetID:   m.ID,
			})
		}
		if meetingNeedsCourseCode(m) {
			questions = append(questions, models.Question{
				Type:       models.FieldCourseCode,
				Question:   fmt.Sprintf("What is the course code for the %s?", m.Description),
				Field:      "course_code",
				Target:     m.Description,
				TargetType: models.TargetMeeting,
				TargetID:   m.ID,
			})
		}
	}

	for _, t := range s.Tasks {
		if !taskNeedsCourseCode(t) {
			continue
		}
		if t.RelatedEvent != nil && askedCourseByDescription[*t.RelatedEvent] {
			continue
		}
		questions = append(questions, models.Question{
			Type:       models.FieldCourseCode,
			Question:   fmt.Sprintf("What is the course code for the %s?", t.Description),
			Field:      "course_code",
			Target:     t.Description,
			TargetType: models.TargetTask,
			TargetID:   t.ID,
		})
	}

	return questions
}

// RefreshMissingInfo recomputes every item's missing_info set so the in-band
// bookkeeping matches the current field values. Called at the boundary after
// external JSON is deserialized.
func RefreshMissingInfo(s *models.Schedule) {
	if s == nil {
		return
	}
	for i := range s.Meetings {
		m := &s.Meetings[i]
		missing := []string{}
		if !hasTime(m.Time) {
			missing = append(missing, "time")
		}
		if !hasDuration(m.DurationMinutes) {
			missing = append(missing, "duration_minutes")
		}
		if meetingNeedsCourseCode(*m) {
			missing = append(missing, "course_code")
		}
		m.MissingInfo = missing
	}
	for i := range s.Tasks {
		t := &s.Tasks[i]
		missing := []string{}
		if taskNeedsCourseCode(*t) {
			missing = append(missing, "course_code")
		}
		t.MissingInfo = missing
	}
}

func meetingNeedsCourseCode(m models.Meeting) bool {
	return !hasText(m.CourseCode) && courseCodeMeetingTypes[m.Type]
}

func taskNeedsCourseCode(t models.Task) bool {
	return !hasText(t.CourseCode) && t.Category == string(models.TaskPreparation)
}

func hasTime(v *string) bool {
	return v != nil && *v != ""
}

func hasDuration(v *int) bool {
	return v != nil && *v != 0
}

func hasText(v *string) bool {
	return v != nil && *v != ""
}
