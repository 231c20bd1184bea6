// ABOUTME: Chat endpoint handlers for the coach conversation
// ABOUTME: POST runs a chat turn; GET is the liveness probe
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/harperreed/mindcoach/coach"
	"github.com/harperreed/mindcoach/models"
)

const chatVersion = "mindcoach chat v1"

type ChatHandlers struct {
	db    *sql.DB
	coach *coach.Coach

	// openAIConfigured gates POST /chat: without model credentials the
	// endpoint fails fast instead of timing out against the API.
	openAIConfigured bool

	// timeout bounds a whole turn including model and calendar calls.
	timeout time.Duration
}

func NewChatHandlers(database *sql.DB, c *coach.Coach, openAIConfigured bool, timeout time.Duration) *ChatHandlers {
	return &ChatHandlers{
		db:               database,
		coach:            c,
		openAIConfigured: openAIConfigured,
		timeout:          timeout,
	}
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply             string               `json:"reply"`
	CalendarAction    *models.ActionResult `json:"calendarAction"`
	HasCalendarAccess bool                 `json:"hasCalendarAccess"`
}

// HandleStatus is the liveness probe on GET /chat.
func (h *ChatHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Chat API is working. Use POST to send messages.",
		"version": chatVersion,
	})
}

// HandleChat runs one chat turn on POST /chat. The turn always succeeds at
// the HTTP level unless the request is malformed or the model call fails;
// calendar trouble is reported inside the rendered reply.
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		respondError(w, http.StatusBadRequest, "Invalid request: message is required")
		return
	}

	if !h.openAIConfigured {
		respondError(w, http.StatusInternalServerError, "OPENAI_API_KEY not configured.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	// Anonymous users chat with a zero token: no calendar access, no
	// network calls on the token path.
	var tok models.SessionToken
	session, err := sessionFromRequest(h.db, r)
	if err != nil {
		log.Printf("[chat] failed to load session: %v", err)
	}
	if session != nil {
		tok = session.Token
	}

	result, updated, err := h.coach.HandleTurn(ctx, req.Message, tok)
	persistToken(h.db, session, updated)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ChatResponse{
		Reply:             result.Reply,
		CalendarAction:    result.CalendarAction,
		HasCalendarAccess: result.HasCalendarAccess,
	})
}
