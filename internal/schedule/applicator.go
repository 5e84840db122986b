package schedule

import (
	"strconv"
	"strings"
	"sync"

	"github.com/lockin-app/lockin-api/internal/models"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

// AnswerInput is a single user-supplied answer to a clarifying question.
type AnswerInput struct {
	ItemID     string `json:"item_id"`
	Type       string `json:"type"`
	Answer     string `json:"answer"`
	Target     string `json:"target,omitempty"`
	TargetType string `json:"target_type,omitempty"`
}

// AnswerResult reports the schedule state after one answer was applied.
type AnswerResult struct {
	Schedule             *models.Schedule  `json:"schedule"`
	Questions            []models.Question `json:"questions"`
	HasMoreQuestions     bool              `json:"has_more_questions"`
	ReadyForOptimization bool              `json:"ready_for_optimization"`
}

// Applicator applies answers to the working schedule held by a Store. Apply
// calls are serialized with a mutex: two concurrent answers for the same
// session would otherwise race on the load-mutate-save cycle.
type Applicator struct {
	mu    sync.Mutex
	store *Store
}

// NewApplicator wraps the given store.
func NewApplicator(store *Store) *Applicator {
	return &Applicator{store: store}
}

// Apply validates the input, writes the answer into the addressed item,
// propagates meeting course codes to related preparation tasks, recomputes
// the remaining questions and persists the result. The store is untouched
// when an error is returned.
func (a *Applicator) Apply(input AnswerInput) (*AnswerResult, error) {
	if input.ItemID == "" || input.Type == "" || strings.TrimSpace(input.Answer) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "item_id, type and answer are required")
	}
	switch input.Type {
	case models.FieldTime, models.FieldDuration, models.FieldCourseCode:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown answer type: "+input.Type)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.store.Load(false)

	meeting, task := findItem(s, input.ItemID)
	if meeting == nil && task == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no schedule item with id "+input.ItemID)
	}

	switch input.Type {
	case models.FieldTime:
		value := NormalizeTime(input.Answer).String()
		if meeting != nil {
			meeting.Time = stringPtr(value)
			removeMissing(&meeting.MissingInfo, "time")
		} else {
			task.Time = stringPtr(value)
			removeMissing(&task.MissingInfo, "time")
		}
	case models.FieldDuration:
		minutes, err := parseMinutes(input.Answer)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duration answer must be a number of minutes")
		}
		if meeting != nil {
			meeting.DurationMinutes = &minutes
			removeMissing(&meeting.MissingInfo, "duration_minutes")
		} else {
			task.DurationMinutes = &minutes
			removeMissing(&task.MissingInfo, "duration_minutes")
		}
	case models.FieldCourseCode:
		code := strings.TrimSpace(input.Answer)
		if meeting != nil {
			meeting.CourseCode = &code
			removeMissing(&meeting.MissingInfo, "course_code")
			propagateCourseCode(s, meeting.Description, code)
		} else {
			task.CourseCode = &code
			removeMissing(&task.MissingInfo, "course_code")
		}
		addCourseCode(s, code)
	}

	questions := FindQuestions(s)
	hasMore := len(questions) > 0
	ready := !hasMore && !s.IsEmpty()

	a.store.Save(s, false)
	if ready {
		a.store.Save(s, true)
	}

	return &AnswerResult{
		Schedule:             s,
		Questions:            questions,
		HasMoreQuestions:     hasMore,
		ReadyForOptimization: ready,
	}, nil
}

// propagateCourseCode copies an answered meeting course code onto every
// preparation task that references the meeting by description and has no
// code of its own. These tasks never had their own question asked.
func propagateCourseCode(s *models.Schedule, meetingDescription, code string) {
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if t.RelatedEvent == nil || *t.RelatedEvent != meetingDescription {
			continue
		}
		if hasText(t.CourseCode) {
			continue
		}
		t.CourseCode = stringPtr(code)
		removeMissing(&t.MissingInfo, "course_code")
	}
}

func addCourseCode(s *models.Schedule, code string) {
	for _, existing := range s.CourseCodes {
		if existing == code {
			return
		}
	}
	s.CourseCodes = append(s.CourseCodes, code)
}

func findItem(s *models.Schedule, id string) (*models.Meeting, *models.Task) {
	for i := range s.Meetings {
		if s.Meetings[i].ID == id {
			return &s.Meetings[i], nil
		}
	}
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return nil, &s.Tasks[i]
		}
	}
	return nil, nil
}

func removeMissing(set *[]string, field string) {
	out := (*set)[:0]
	for _, f := range *set {
		if f != field {
			out = append(out, f)
		}
	}
	*set = out
}

func parseMinutes(answer string) (int, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(answer), func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		return 0, strconv.ErrRange
	}
	return minutes, nil
}

func stringPtr(v string) *string {
	return &v
}
