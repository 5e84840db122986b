package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lockin-app/lockin-api/internal/models"
)

const scheduleShape = `{
  "meetings": [{"id": null, "description": "", "day": null, "time": null, "duration_minutes": null, "type": "regular|exam|presentation", "location": null, "course_code": null, "missing_info": []}],
  "tasks": [{"id": null, "description": "", "day": null, "time": null, "duration_minutes": null, "priority": null, "category": "homework|preparation", "is_fixed_time": false, "location": null, "course_code": null, "related_event": null, "missing_info": []}],
  "course_codes": []
}`

// BuildParsePrompt asks the parser model to structure free-text commitments.
func BuildParsePrompt(text string) string {
	var b strings.Builder
	b.WriteString("Parse the following description of a student's commitments into a schedule JSON object.\n")
	b.WriteString("Use exactly this shape, with null for anything not stated. Do not guess times or course codes.\n")
	b.WriteString("Link preparation tasks to their meeting by putting the meeting's description in related_event.\n\n")
	b.WriteString(scheduleShape)
	b.WriteString("\n\nDescription:\n")
	b.WriteString(text)
	return b.String()
}

// OptimizerSystemPrompt pins the optimizer model to JSON-only replies.
const OptimizerSystemPrompt = "You are a scheduling assistant. You reply with only valid JSON, no prose."

// BuildOptimizePrompt merges the confirmed schedule, the user's preferences
// and any imported calendar events into one optimization request.
func BuildOptimizePrompt(s *models.Schedule, prefs *models.Preferences, imported []models.CalendarEvent, customPrompt string) string {
	var b strings.Builder
	b.WriteString("Rearrange the flexible tasks in this schedule into concrete day/time slots.\n")
	b.WriteString("Fixed meetings and imported calendar events must not move. Respect the stated preferences.\n")
	b.WriteString("Return the full schedule JSON in the same shape as the input.\n\n")
	if customPrompt != "" {
		b.WriteString("Additional instructions for this user:\n")
		b.WriteString(customPrompt)
		b.WriteString("\n\n")
	}
	writeJSONSection(&b, "Schedule", s)
	if prefs != nil {
		writeJSONSection(&b, "Preferences", prefs)
	}
	if len(imported) > 0 {
		writeJSONSection(&b, "Imported calendar events", imported)
	}
	return b.String()
}

// BuildChatPrompt frames one refinement turn with the conversation so far
// and the current schedule.
func BuildChatPrompt(s *models.Schedule, history []models.ChatMessage, message string) string {
	var b strings.Builder
	b.WriteString("The user wants to refine their schedule. Apply the requested change and reply with JSON:\n")
	b.WriteString(`{"message": "<short confirmation for the user>", "schedule": <the full updated schedule, or null if nothing changed>}`)
	b.WriteString("\n\n")
	writeJSONSection(&b, "Current schedule", s)
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(message)
	return b.String()
}

// BuildPromptUpdatePrompt asks the model to fold chat feedback into the
// user's persistent custom optimization prompt.
func BuildPromptUpdatePrompt(currentPrompt string, history []models.ChatMessage) string {
	var b strings.Builder
	b.WriteString("Update the user's standing scheduling instructions based on this conversation.\n")
	b.WriteString(`Reply with JSON: {"custom_prompt": "<the updated instructions>"}`)
	b.WriteString("\n\nCurrent instructions:\n")
	if currentPrompt == "" {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(currentPrompt)
		b.WriteString("\n")
	}
	b.WriteString("\nConversation:\n")
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}

func writeJSONSection(b *strings.Builder, title string, v interface{}) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return
	}
	b.WriteString(title)
	b.WriteString(":\n")
	b.Write(encoded)
	b.WriteString("\n\n")
}
