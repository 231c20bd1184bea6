// ABOUTME: Calendar event route handlers: list, create, delete
// ABOUTME: Requires an authenticated session and maps upstream failures to 401/500
package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/harperreed/mindcoach/auth"
	"github.com/harperreed/mindcoach/coach"
	"github.com/harperreed/mindcoach/gcal"
	"github.com/harperreed/mindcoach/models"
)

const defaultMaxResults = 10

type CalendarHandlers struct {
	db      *sql.DB
	gateway *gcal.Gateway
	tokens  coach.TokenSource
}

func NewCalendarHandlers(database *sql.DB, gateway *gcal.Gateway, tokens coach.TokenSource) *CalendarHandlers {
	return &CalendarHandlers{db: database, gateway: gateway, tokens: tokens}
}

// accessToken authenticates the request and yields a valid access token,
// refreshing and persisting as needed. A written response means the caller
// should return immediately.
func (h *CalendarHandlers) accessToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	session, err := sessionFromRequest(h.db, r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load session")
		return "", false
	}
	if session == nil || !session.Token.Usable(time.Now()) {
		respondError(w, http.StatusUnauthorized, "Not authenticated. Please sign in with Google.")
		return "", false
	}

	updated, accessToken, err := h.tokens.ValidAccessToken(r.Context(), session.Token)
	persistToken(h.db, session, updated)
	if err != nil {
		if auth.IsAuthError(err) {
			respondError(w, http.StatusUnauthorized, "Session expired. Please sign in again.")
		} else {
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return "", false
	}

	return accessToken, true
}

func (h *CalendarHandlers) respondUpstreamError(w http.ResponseWriter, err error, action string) {
	if gcal.IsAuthError(err) {
		respondError(w, http.StatusUnauthorized, "Session expired. Please sign in again.")
		return
	}
	respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s: %v", action, err))
}

type ListEventsResponse struct {
	Events []models.CalendarEvent `json:"events"`
}

// HandleListEvents serves GET /calendar/events?maxResults=N.
func (h *CalendarHandlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := h.accessToken(w, r)
	if !ok {
		return
	}

	maxResults := int64(defaultMaxResults)
	if v := r.URL.Query().Get("maxResults"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxResults = n
		}
	}

	events, err := h.gateway.ListUpcoming(r.Context(), accessToken, maxResults, time.Time{})
	if err != nil {
		h.respondUpstreamError(w, err, "fetch events")
		return
	}

	if events == nil {
		events = []models.CalendarEvent{}
	}
	respondJSON(w, http.StatusOK, ListEventsResponse{Events: events})
}

type CreateEventRequest struct {
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location,omitempty"`
}

type CreateEventResponse struct {
	Event   *models.CalendarEvent `json:"event"`
	Message string                `json:"message"`
}

// HandleCreateEvent serves POST /calendar/events.
func (h *CalendarHandlers) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := h.accessToken(w, r)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Summary == "" || req.StartTime == "" || req.EndTime == "" {
		respondError(w, http.StatusBadRequest, "Missing required fields: summary, startTime, endTime")
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "startTime must be an RFC3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, "endTime must be an RFC3339 timestamp")
		return
	}

	event, err := h.gateway.CreateEvent(r.Context(), accessToken, models.CreateEventParams{
		Summary:     req.Summary,
		Description: req.Description,
		StartTime:   start,
		EndTime:     end,
		Location:    req.Location,
	})
	if err != nil {
		h.respondUpstreamError(w, err, "create event")
		return
	}

	respondJSON(w, http.StatusOK, CreateEventResponse{
		Event:   event,
		Message: fmt.Sprintf("Event %q created successfully!", event.Summary),
	})
}

// HandleDeleteEvent serves DELETE /calendar/events/{id}.
func (h *CalendarHandlers) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := h.accessToken(w, r)
	if !ok {
		return
	}

	eventID := mux.Vars(r)["id"]
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "Missing event id")
		return
	}

	if err := h.gateway.DeleteEvent(r.Context(), accessToken, eventID); err != nil {
		h.respondUpstreamError(w, err, "delete event")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}
