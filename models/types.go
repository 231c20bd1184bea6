// ABOUTME: Data models for sessions, calendar events, and chat turns
// ABOUTME: Defines SessionToken, CalendarEvent, CalendarAction, and result structs
package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenErrRefreshFailed tags a SessionToken whose refresh attempt failed.
// Callers must treat it as "re-authentication required", not as transient.
const TokenErrRefreshFailed = "RefreshAccessTokenError"

// SessionToken is the OAuth token triple attached to a user session.
// ExpiresAt is epoch seconds, matching the provider's expires_at claim.
type SessionToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
	Error        string `json:"error,omitempty"`
}

// Expired reports whether the access token has passed its expiry.
func (t SessionToken) Expired(now time.Time) bool {
	return t.ExpiresAt <= now.Unix()
}

// Usable reports whether the token can authorize a calendar call right now
// or could after a refresh.
func (t SessionToken) Usable(now time.Time) bool {
	if t.Error != "" {
		return false
	}
	if !t.Expired(now) {
		return t.AccessToken != ""
	}
	return t.RefreshToken != ""
}

// Session is a signed-in user's server-side session record.
type Session struct {
	ID        uuid.UUID    `json:"id"`
	Email     string       `json:"email,omitempty"`
	Token     SessionToken `json:"token"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// CalendarEvent is the simplified event shape exposed to the frontend.
// Start and End hold either an RFC3339 instant (timed events) or a bare
// YYYY-MM-DD date (all-day events), never both representations at once.
type CalendarEvent struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location,omitempty"`
	HTMLLink    string `json:"htmlLink,omitempty"`
}

// AllDay reports whether the event carries a date rather than an instant.
func (e CalendarEvent) AllDay() bool {
	_, err := time.Parse("2006-01-02", e.Start)
	return err == nil
}

// EventReminder is a single reminder override on a calendar event.
type EventReminder struct {
	Method  string `json:"method"` // "email" or "popup"
	Minutes int64  `json:"minutes"`
}

// EventReminders configures reminders for a created event. When supplied by
// the caller it fully replaces the gateway defaults, no merging.
type EventReminders struct {
	UseDefault bool            `json:"useDefault"`
	Overrides  []EventReminder `json:"overrides,omitempty"`
}

// CreateEventParams are the inputs for creating a calendar event.
type CreateEventParams struct {
	Summary     string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	Reminders   *EventReminders
}

// ActionCreateEvent is the only action tag the extractor accepts.
const ActionCreateEvent = "create_event"

// DefaultActionDuration is applied when the model omits a duration, in minutes.
const DefaultActionDuration = 60

// CalendarAction is a transient scheduling intent parsed from model output.
// It is consumed immediately to build CreateEventParams and never stored.
type CalendarAction struct {
	Action      string `json:"action"` // always "create_event"
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`               // YYYY-MM-DD
	Time        string `json:"time"`               // HH:MM, local
	Duration    int    `json:"duration,omitempty"` // minutes, default 60
}

// StartEnd resolves the action's date and time into absolute instants in the
// given location. End is start plus the action duration.
func (a CalendarAction) StartEnd(loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	duration := a.Duration
	if duration <= 0 {
		duration = DefaultActionDuration
	}
	return start, start.Add(time.Duration(duration) * time.Minute), nil
}

// ChatMessage is a single turn in the client's chat thread.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// CreatedEvent is the trimmed event summary returned with a chat action result.
type CreatedEvent struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Start    string `json:"start"`
	HTMLLink string `json:"htmlLink,omitempty"`
}

// ActionResult reports the outcome of executing a parsed calendar action.
type ActionResult struct {
	Success bool          `json:"success"`
	Event   *CreatedEvent `json:"event,omitempty"`
}
