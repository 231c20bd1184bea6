// ABOUTME: Chat turn orchestration from user message to rendered reply
// ABOUTME: Composes token refresh, calendar context, model call, and action execution
package coach

import (
	"context"
	"log"
	"time"

	"github.com/harperreed/mindcoach/models"
)

// TokenSource yields a currently-valid access token for a session token
// value, refreshing when needed. The returned SessionToken is the updated
// value for the caller to persist.
type TokenSource interface {
	ValidAccessToken(ctx context.Context, tok models.SessionToken) (models.SessionToken, string, error)
}

// CalendarService is the calendar capability the orchestrator consumes.
type CalendarService interface {
	ListUpcoming(ctx context.Context, accessToken string, maxResults int64, timeMin time.Time) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, accessToken string, params models.CreateEventParams) (*models.CalendarEvent, error)
}

// ContextStatus tags how calendar context made it into the prompt, so tests
// assert on the tag instead of log output.
type ContextStatus string

const (
	// ContextNone: no calendar access, prompt built without a calendar section.
	ContextNone ContextStatus = "none"
	// ContextOK: upcoming events were fetched and embedded.
	ContextOK ContextStatus = "ok"
	// ContextEmpty: access available but the calendar had no upcoming events.
	ContextEmpty ContextStatus = "empty"
	// ContextDegraded: the fetch failed; the turn continued without events.
	ContextDegraded ContextStatus = "degraded"
)

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	Reply             string
	CalendarAction    *models.ActionResult
	HasCalendarAccess bool
	ContextStatus     ContextStatus
}

const creationWarning = "\n\n⚠️ I tried to add this to your calendar but encountered an error. Please try again or add it manually."

// Coach runs chat turns. Each turn is independent; the only state that can
// change is the session token value threaded through HandleTurn.
type Coach struct {
	Tokens   TokenSource
	Calendar CalendarService
	LLM      Completer

	// MaxResults caps the events fetched for prompt context.
	MaxResults int64

	// Location resolves action dates and times; defaults to time.Local.
	Location *time.Location
}

func (c *Coach) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.Local
}

// HandleTurn runs a full chat turn: refresh credentials, gather calendar
// context, call the model, and execute any scheduling action found in the
// reply. The returned SessionToken is the possibly-refreshed value the caller
// must persist. A model failure is the only error; calendar problems degrade
// into the result instead.
func (c *Coach) HandleTurn(ctx context.Context, message string, tok models.SessionToken) (TurnResult, models.SessionToken, error) {
	result := TurnResult{ContextStatus: ContextNone}

	updated, accessToken, err := c.Tokens.ValidAccessToken(ctx, tok)
	if err == nil && accessToken != "" {
		result.HasCalendarAccess = true
	}

	// Calendar context is best-effort: a failed listing downgrades to no
	// context, it never aborts the turn.
	calendarContext := ""
	if result.HasCalendarAccess {
		events, listErr := c.Calendar.ListUpcoming(ctx, accessToken, c.MaxResults, time.Time{})
		switch {
		case listErr != nil:
			log.Printf("[coach] failed to fetch calendar context: %v", listErr)
			result.ContextStatus = ContextDegraded
		case len(events) == 0:
			result.ContextStatus = ContextEmpty
			calendarContext = FormatEventsForPrompt(events)
		default:
			result.ContextStatus = ContextOK
			calendarContext = FormatEventsForPrompt(events)
		}
	}

	systemPrompt := BuildSystemPrompt(calendarContext, result.HasCalendarAccess)

	reply, err := c.LLM.Complete(ctx, systemPrompt, message)
	if err != nil {
		return result, updated, err
	}
	result.Reply = reply

	if result.HasCalendarAccess {
		if action, status := ExtractAction(reply); status == ExtractOK {
			result.CalendarAction = c.executeAction(ctx, accessToken, action, &result)
		}
	}

	return result, updated, nil
}

// executeAction turns a parsed action into a calendar event and rewrites the
// reply: block stripped either way, confirmation on success, warning on
// failure. Failures are logged, never raised to the transport layer.
func (c *Coach) executeAction(ctx context.Context, accessToken string, action models.CalendarAction, result *TurnResult) *models.ActionResult {
	start, end, err := action.StartEnd(c.location())
	if err != nil {
		log.Printf("[coach] calendar action has unusable date/time: %v", err)
		result.Reply = StripActionBlocks(result.Reply) + creationWarning
		return &models.ActionResult{Success: false}
	}

	event, err := c.Calendar.CreateEvent(ctx, accessToken, models.CreateEventParams{
		Summary:     action.Summary,
		Description: action.Description,
		StartTime:   start,
		EndTime:     end,
	})
	if err != nil {
		log.Printf("[coach] failed to create calendar event: %v", err)
		result.Reply = StripActionBlocks(result.Reply) + creationWarning
		return &models.ActionResult{Success: false}
	}

	log.Printf("[coach] calendar event created: %s", event.ID)
	result.Reply = StripActionBlocks(result.Reply) + formatConfirmation(action.Summary)

	return &models.ActionResult{
		Success: true,
		Event: &models.CreatedEvent{
			ID:       event.ID,
			Summary:  event.Summary,
			Start:    event.Start,
			HTMLLink: event.HTMLLink,
		},
	}
}

func formatConfirmation(summary string) string {
	return "\n\n✅ I've added \"" + summary + "\" to your calendar!"
}
