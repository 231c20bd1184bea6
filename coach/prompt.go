// ABOUTME: System prompt assembly for the mental coach persona
// ABOUTME: Formats upcoming events into prompt context and scheduling instructions
package coach

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/mindcoach/models"
)

const personaPrompt = `You are a supportive mental coach. You help users with stress management, motivation, building better habits, and boosting confidence. Be empathetic, encouraging, and practical in your advice.`

const schedulingInstructions = `When the user wants to schedule something (like a meditation session, workout, journaling time, or any wellness activity), you can help them create a calendar event. To do this, include a JSON block in your response like this:

` + "```json" + `
{"action": "create_event", "summary": "Event Title", "description": "Optional description", "date": "YYYY-MM-DD", "time": "HH:MM", "duration": 60}
` + "```" + `

The duration is in minutes (default 60 if not specified). Only include this JSON block when the user explicitly asks to schedule or add something to their calendar.`

const noCalendarNote = `Note: The user hasn't connected their Google Calendar yet. If they ask about scheduling or their calendar, suggest they connect it using the "Connect Google Calendar" button.`

// noUpcomingEvents is also what an authorized but empty calendar contributes.
const noUpcomingEvents = "No upcoming events scheduled."

// FormatEventsForPrompt renders events as a natural-language summary for the
// model, one line per event: "- {summary} on {date} at {time} ({location})".
func FormatEventsForPrompt(events []models.CalendarEvent) string {
	if len(events) == 0 {
		return noUpcomingEvents
	}

	lines := make([]string, 0, len(events))
	for _, event := range events {
		line := fmt.Sprintf("- %s on %s", event.Summary, formatEventDate(event))
		if !event.AllDay() {
			line += " at " + formatEventTime(event)
		}
		if event.Location != "" {
			line += fmt.Sprintf(" (%s)", event.Location)
		}
		lines = append(lines, line)
	}

	return "Upcoming events:\n" + strings.Join(lines, "\n")
}

func formatEventDate(event models.CalendarEvent) string {
	if t, err := time.Parse(time.RFC3339, event.Start); err == nil {
		return t.Format("Mon, Jan 2")
	}
	if t, err := time.Parse("2006-01-02", event.Start); err == nil {
		return t.Format("Mon, Jan 2")
	}
	return event.Start
}

func formatEventTime(event models.CalendarEvent) string {
	if t, err := time.Parse(time.RFC3339, event.Start); err == nil {
		return t.Format("3:04 PM")
	}
	return event.Start
}

// BuildSystemPrompt composes the persona with calendar context. When the user
// has calendar access the scheduling-block instructions are included; when
// not, the model is told to suggest connecting a calendar instead.
func BuildSystemPrompt(calendarContext string, hasCalendarAccess bool) string {
	var b strings.Builder
	b.WriteString(personaPrompt)

	if hasCalendarAccess {
		if calendarContext == "" {
			calendarContext = noUpcomingEvents
		}
		b.WriteString("\n\nYou have access to the user's Google Calendar. ")
		b.WriteString(calendarContext)
		b.WriteString("\n\n")
		b.WriteString(schedulingInstructions)
	} else {
		b.WriteString("\n\n")
		b.WriteString(noCalendarNote)
	}

	return b.String()
}
