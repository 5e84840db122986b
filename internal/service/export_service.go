package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lockin-app/lockin-api/internal/models"
	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
	"github.com/lockin-app/lockin-api/pkg/export"
)

// ExportFormat identifies a download format.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
	FormatICS ExportFormat = "ics"
)

// ExportResult is a rendered download.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportsConfig tunes schedule downloads.
type ExportsConfig struct {
	Enabled      bool
	ICSHorizon   int
	DefaultTitle string
}

// ExportService renders the confirmed schedule as CSV, PDF or ICS.
type ExportService struct {
	schedules *ScheduleService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	ics       *export.ICSExporter
	logger    *zap.Logger
	config    ExportsConfig
}

// NewExportService constructs an ExportService.
func NewExportService(schedules *ScheduleService, logger *zap.Logger, config ExportsConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ICSHorizon <= 0 {
		config.ICSHorizon = 14
	}
	if config.DefaultTitle == "" {
		config.DefaultTitle = "Weekly Schedule"
	}
	return &ExportService{
		schedules: schedules,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		ics:       export.NewICSExporter(""),
		logger:    logger,
		config:    config,
	}
}

// Render produces the download for the requested format.
func (s *ExportService) Render(ctx context.Context, userID string, format ExportFormat) (*ExportResult, error) {
	if !s.config.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "schedule exports are disabled")
	}

	sched, err := s.schedules.ConfirmedSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(scheduleDataset(sched))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "schedule.csv"}, nil
	case FormatPDF:
		content, err := s.pdf.Render(scheduleDataset(sched), s.config.DefaultTitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf export")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "schedule.pdf"}, nil
	case FormatICS:
		calEvents := UpcomingEvents(sched, time.Now().UTC(), s.config.ICSHorizon)
		icsEvents := make([]export.Event, 0, len(calEvents))
		for _, ev := range calEvents {
			icsEvents = append(icsEvents, export.Event{
				UID:         ev.ID,
				Summary:     ev.Summary,
				Description: ev.Description,
				Start:       ev.Start,
				End:         ev.End,
			})
		}
		content, err := s.ics.Render(s.config.DefaultTitle, icsEvents)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render ics export")
		}
		return &ExportResult{Content: content, ContentType: "text/calendar", Filename: "schedule.ics"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export format: "+string(format))
	}
}

func scheduleDataset(s *models.Schedule) export.Dataset {
	headers := []string{"Kind", "Description", "Day", "Time", "Duration (min)", "Type", "Course", "Location"}
	rows := make([]map[string]string, 0, len(s.Meetings)+len(s.Tasks))

	for _, m := range s.Meetings {
		rows = append(rows, map[string]string{
			"Kind":           "meeting",
			"Description":    m.Description,
			"Day":            derefString(m.Day),
			"Time":           derefString(m.Time),
			"Duration (min)": derefInt(m.DurationMinutes),
			"Type":           m.Type,
			"Course":         derefString(m.CourseCode),
			"Location":       derefString(m.Location),
		})
	}
	for _, t := range s.Tasks {
		rows = append(rows, map[string]string{
			"Kind":           "task",
			"Description":    t.Description,
			"Day":            derefString(t.Day),
			"Time":           derefString(t.Time),
			"Duration (min)": derefInt(t.DurationMinutes),
			"Type":           t.Category,
			"Course":         derefString(t.CourseCode),
			"Location":       derefString(t.Location),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// UpcomingEvents maps weekday + HH:MM items onto concrete dates within the
// horizon, starting from the given moment. Items without a day, with an
// absent time, or with an unresolved ambiguity marker are skipped.
func UpcomingEvents(s *models.Schedule, from time.Time, horizonDays int) []models.CalendarEvent {
	events := []models.CalendarEvent{}
	if s == nil {
		return events
	}

	add := func(id, description, location string, day, timeValue *string, duration *int) {
		start, ok := nextOccurrence(from, day, timeValue)
		if !ok {
			return
		}
		if int(start.Sub(from).Hours()/24) >= horizonDays {
			return
		}
		minutes := 60
		if duration != nil && *duration > 0 {
			minutes = *duration
		}
		events = append(events, models.CalendarEvent{
			ID:       id,
			Summary:  description,
			Location: location,
			Start:    start,
			End:      start.Add(time.Duration(minutes) * time.Minute),
		})
	}

	for _, m := range s.Meetings {
		add(m.ID, m.Description, derefString(m.Location), m.Day, m.Time, m.DurationMinutes)
	}
	for _, t := range s.Tasks {
		add(t.ID, t.Description, derefString(t.Location), t.Day, t.Time, t.DurationMinutes)
	}
	return events
}

func nextOccurrence(from time.Time, day, timeValue *string) (time.Time, bool) {
	if day == nil || timeValue == nil {
		return time.Time{}, false
	}
	weekday, ok := weekdays[strings.ToLower(strings.TrimSpace(*day))]
	if !ok {
		return time.Time{}, false
	}

	parts := strings.SplitN(*timeValue, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour > 23 {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute > 59 {
		return time.Time{}, false
	}

	daysAhead := (int(weekday) - int(from.Weekday()) + 7) % 7
	candidate := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location()).AddDate(0, 0, daysAhead)
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate, true
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
