package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lockin-app/lockin-api/internal/models"
)

// TimeKind discriminates the outcome of time normalization.
type TimeKind int

const (
	// TimeAbsent means no time was supplied at all.
	TimeAbsent TimeKind = iota
	// TimeCanonical means the value normalized to 24-hour HH:MM.
	TimeCanonical
	// TimeAmbiguous means the value could not be canonicalized without
	// guessing AM/PM and must be surfaced to the user.
	TimeAmbiguous
)

// AmbiguousPrefix marks a time value that needs user disambiguation. The
// original input follows the prefix.
const AmbiguousPrefix = "AMBIGUOUS:"

// TimeResult is the outcome of normalizing one time-of-day string. Absence
// and ambiguity are values, not errors.
type TimeResult struct {
	Kind  TimeKind
	Value string
}

// String renders the result as the schedule-facing field value: canonical
// HH:MM, an AMBIGUOUS:<original> marker, or "" for absent.
func (r TimeResult) String() string {
	switch r.Kind {
	case TimeCanonical:
		return r.Value
	case TimeAmbiguous:
		return AmbiguousPrefix + r.Value
	default:
		return ""
	}
}

var (
	meridiemRe = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)\s*$`)
	clockRe    = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)
)

// NormalizeTime converts a free-form time-of-day string into a canonical
// 24-hour representation, an ambiguity marker carrying the original text, or
// absence. It never fails: malformed input is ambiguous, not an error.
func NormalizeTime(raw string) TimeResult {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" || trimmed == "None" {
		return TimeResult{Kind: TimeAbsent}
	}

	switch strings.ToLower(trimmed) {
	case "noon":
		return TimeResult{Kind: TimeCanonical, Value: "12:00"}
	case "midnight":
		return TimeResult{Kind: TimeCanonical, Value: "00:00"}
	}

	if m := meridiemRe.FindStringSubmatch(trimmed); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute <= 59 {
			meridiem := strings.ToLower(m[3])
			if meridiem == "am" && hour == 12 {
				hour = 0
			} else if meridiem == "pm" && hour != 12 {
				hour += 12
			}
			return TimeResult{Kind: TimeCanonical, Value: fmt.Sprintf("%02d:%02d", hour, minute)}
		}
		return TimeResult{Kind: TimeAmbiguous, Value: trimmed}
	}

	if m := clockRe.FindStringSubmatch(trimmed); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			// Without a meridiem only hours 13-23, or hours written with a
			// leading zero, are unambiguously 24-hour notation. "9:00" could
			// mean morning or evening and is never guessed.
			if hour >= 13 || strings.HasPrefix(m[1], "0") {
				return TimeResult{Kind: TimeCanonical, Value: fmt.Sprintf("%02d:%02d", hour, minute)}
			}
		}
		return TimeResult{Kind: TimeAmbiguous, Value: trimmed}
	}

	return TimeResult{Kind: TimeAmbiguous, Value: trimmed}
}

// NormalizeScheduleTimes rewrites every meeting and task time field in place
// with its normalized form. No other field is touched.
func NormalizeScheduleTimes(s *models.Schedule) {
	if s == nil {
		return
	}
	for i := range s.Meetings {
		s.Meetings[i].Time = normalizeField(s.Meetings[i].Time)
	}
	for i := range s.Tasks {
		s.Tasks[i].Time = normalizeField(s.Tasks[i].Time)
	}
}

func normalizeField(v *string) *string {
	if v == nil {
		return nil
	}
	if strings.HasPrefix(*v, AmbiguousPrefix) {
		return v
	}
	res := NormalizeTime(*v)
	if res.Kind == TimeAbsent {
		return nil
	}
	out := res.String()
	return &out
}
