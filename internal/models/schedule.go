package models

// MeetingType categorizes a fixed-time calendar occurrence.
type MeetingType string

const (
	MeetingRegular      MeetingType = "regular"
	MeetingExam         MeetingType = "exam"
	MeetingPresentation MeetingType = "presentation"
)

// TaskCategory categorizes a flexible-time item.
type TaskCategory string

const (
	TaskHomework    TaskCategory = "homework"
	TaskPreparation TaskCategory = "preparation"
)

// Meeting is a fixed-time calendar occurrence.
type Meeting struct {
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	Day             *string  `json:"day"`
	Time            *string  `json:"time"`
	DurationMinutes *int     `json:"duration_minutes"`
	Type            string   `json:"type"`
	Location        *string  `json:"location"`
	CourseCode      *string  `json:"course_code"`
	MissingInfo     []string `json:"missing_info"`
}

// Task is a flexible-time actionable item, optionally tied to a meeting
// via the related_event description string.
type Task struct {
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	Day             *string  `json:"day"`
	Time            *string  `json:"time"`
	DurationMinutes *int     `json:"duration_minutes"`
	Priority        *string  `json:"priority"`
	Category        string   `json:"category"`
	IsFixedTime     bool     `json:"is_fixed_time"`
	Location        *string  `json:"location"`
	CourseCode      *string  `json:"course_code"`
	RelatedEvent    *string  `json:"related_event"`
	MissingInfo     []string `json:"missing_info"`
}

// Schedule is the aggregate root holding meetings, tasks and the set of
// known course codes.
type Schedule struct {
	Meetings    []Meeting `json:"meetings"`
	Tasks       []Task    `json:"tasks"`
	CourseCodes []string  `json:"course_codes"`
}

// Question is a derived clarifying prompt for a single unresolved field.
// It is never persisted on its own.
type Question struct {
	Type       string `json:"type"`
	Question   string `json:"question"`
	Field      string `json:"field"`
	Target     string `json:"target"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
}

// Question and field type identifiers.
const (
	FieldTime       = "time"
	FieldDuration   = "duration"
	FieldCourseCode = "course_code"

	TargetMeeting = "meeting"
	TargetTask    = "task"
)

// EmptySchedule returns a well-formed schedule with no content. Slices are
// allocated so JSON renders [] instead of null.
func EmptySchedule() *Schedule {
	return &Schedule{
		Meetings:    []Meeting{},
		Tasks:       []Task{},
		CourseCodes: []string{},
	}
}

// Clone returns a deep copy of the schedule.
func (s *Schedule) Clone() *Schedule {
	if s == nil {
		return EmptySchedule()
	}
	out := &Schedule{
		Meetings:    make([]Meeting, len(s.Meetings)),
		Tasks:       make([]Task, len(s.Tasks)),
		CourseCodes: append([]string{}, s.CourseCodes...),
	}
	for i, m := range s.Meetings {
		out.Meetings[i] = m
		out.Meetings[i].Day = cloneString(m.Day)
		out.Meetings[i].Time = cloneString(m.Time)
		out.Meetings[i].DurationMinutes = cloneInt(m.DurationMinutes)
		out.Meetings[i].Location = cloneString(m.Location)
		out.Meetings[i].CourseCode = cloneString(m.CourseCode)
		out.Meetings[i].MissingInfo = append([]string{}, m.MissingInfo...)
	}
	for i, t := range s.Tasks {
		out.Tasks[i] = t
		out.Tasks[i].Day = cloneString(t.Day)
		out.Tasks[i].Time = cloneString(t.Time)
		out.Tasks[i].DurationMinutes = cloneInt(t.DurationMinutes)
		out.Tasks[i].Priority = cloneString(t.Priority)
		out.Tasks[i].Location = cloneString(t.Location)
		out.Tasks[i].CourseCode = cloneString(t.CourseCode)
		out.Tasks[i].RelatedEvent = cloneString(t.RelatedEvent)
		out.Tasks[i].MissingInfo = append([]string{}, t.MissingInfo...)
	}
	return out
}

// IsEmpty reports whether the schedule has no meetings and no tasks.
func (s *Schedule) IsEmpty() bool {
	return s == nil || (len(s.Meetings) == 0 && len(s.Tasks) == 0)
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
