package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Event describes a single calendar entry for ICS rendering.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// ICSExporter renders events into an iCalendar document.
type ICSExporter struct {
	ProdID string
}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter(prodID string) *ICSExporter {
	if prodID == "" {
		prodID = "-//lockin//schedule-export//EN"
	}
	return &ICSExporter{ProdID: prodID}
}

// Render produces an ICS payload for the given calendar name and events.
func (e *ICSExporter) Render(name string, events []Event) ([]byte, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("ics requires at least one event")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.ProdID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	now := time.Now().UTC()
	for _, ev := range events {
		ve := cal.AddEvent(ev.UID)
		ve.SetDtStampTime(now)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetSummary(ev.Summary)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
	}

	return []byte(cal.Serialize()), nil
}
