// ABOUTME: Tests for calendar routes: auth gating, validation, upstream mapping
package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/mindcoach/auth"
	"github.com/harperreed/mindcoach/db"
	"github.com/harperreed/mindcoach/gcal"
	"github.com/harperreed/mindcoach/models"
)

// newCalendarHandlers wires real gateway and refresher against a stub
// Calendar API. Sessions carry unexpired tokens so the refresher stays on its
// no-network fast path.
func newCalendarHandlers(t *testing.T, apiHandler http.HandlerFunc) (*CalendarHandlers, *sql.DB) {
	t.Helper()
	srv := httptest.NewServer(apiHandler)
	t.Cleanup(srv.Close)

	database := openTestDB(t)
	gateway := &gcal.Gateway{Endpoint: srv.URL + "/"}
	return NewCalendarHandlers(database, gateway, &auth.Refresher{TokenURL: srv.URL + "/token"}), database
}

func TestListEventsUnauthenticated(t *testing.T) {
	h, _ := newCalendarHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("calendar API should not be reached without a session")
	})

	req := httptest.NewRequest(http.MethodGet, "/calendar/events", nil)
	w := httptest.NewRecorder()
	h.HandleListEvents(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "sign in with Google")
}

func TestListEventsExpiredUnrefreshableSession(t *testing.T) {
	h, database := newCalendarHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("calendar API should not be reached with dead credentials")
	})

	session, err := db.CreateSession(database, "", models.SessionToken{
		AccessToken: "stale",
		ExpiresAt:   time.Now().Add(-time.Hour).Unix(),
	}, 24*time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/calendar/events", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.ID.String()})
	w := httptest.NewRecorder()
	h.HandleListEvents(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListEvents(t *testing.T) {
	future := time.Now().Add(2 * time.Hour)
	h, database := newCalendarHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
			{
				"id":      "evt-1",
				"summary": "Morning run",
				"start":   map[string]string{"dateTime": future.Format(time.RFC3339)},
				"end":     map[string]string{"dateTime": future.Add(time.Hour).Format(time.RFC3339)},
			},
		}})
	})
	cookie := sessionCookie(t, database)

	req := httptest.NewRequest(http.MethodGet, "/calendar/events?maxResults=5", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.HandleListEvents(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ListEventsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Morning run", resp.Events[0].Summary)
}

func TestListEventsEmptyIsNotNull(t *testing.T) {
	h, database := newCalendarHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
	})
	cookie := sessionCookie(t, database)

	req := httptest.NewRequest(http.MethodGet, "/calendar/events", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.HandleListEvents(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"events":[]`)
}

func TestListEventsTokenExpiryUpgradesTo401(t *testing.T) {
	h, database := newCalendarHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"Invalid Credentials"}}`)
	})
	cookie := sessionCookie(t, database)

	req := httptest.NewRequest(http.MethodGet, "/calendar/events", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.HandleListEvents(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session expired")
}

func TestCreateEventMissingFields(t *testing.T) {
	h, database := newCalendarHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("calendar API should not be reached for invalid input")
	})
	cookie := sessionCookie(t, database)

	bodies := []string{
		`{}`,
		`{"summary": "X"}`,
		`{"summary": "X", "startTime": "2026-09-01T07:00:00Z"}`,
		`{"startTime": "2026-09-01T07:00:00Z", "endTime": "2026-09-01T08:00:00Z"}`,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/calendar/events", bytes.NewBufferString(body))
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		h.HandleCreateEvent(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestCreateEventBadTimestamp(t *testing.T) {
	h, database := newCalendarHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("calendar API should not be reached for invalid input")
	})
	cookie := sessionCookie(t, database)

	body := `{"summary": "X", "startTime": "next tuesday", "endTime": "2026-09-01T08:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/calendar/events", bytes.NewBufferString(body))
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.HandleCreateEvent(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateEvent(t *testing.T) {
	h, database := newCalendarHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "evt-new",
			"summary": "Journaling",
			"start":   map[string]string{"dateTime": "2026-09-01T07:00:00Z"},
			"end":     map[string]string{"dateTime": "2026-09-01T07:30:00Z"},
		})
	})
	cookie := sessionCookie(t, database)

	body := `{"summary": "Journaling", "startTime": "2026-09-01T07:00:00Z", "endTime": "2026-09-01T07:30:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/calendar/events", bytes.NewBufferString(body))
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.HandleCreateEvent(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp CreateEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Event)
	assert.Equal(t, "evt-new", resp.Event.ID)
	assert.Contains(t, resp.Message, "created successfully")
}

func TestDeleteEvent(t *testing.T) {
	deleted := false
	h, database := newCalendarHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		assert.Contains(t, r.URL.Path, "evt-gone")
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	})
	cookie := sessionCookie(t, database)

	router := mux.NewRouter()
	router.HandleFunc("/calendar/events/{id}", h.HandleDeleteEvent).Methods("DELETE")

	req := httptest.NewRequest(http.MethodDelete, "/calendar/events/evt-gone", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, deleted)
}

func TestRefreshedTokenPersisted(t *testing.T) {
	// Expired-but-refreshable session: the list request must first refresh
	// and the refreshed token must land back in the session store.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "refreshed-access",
				"expires_in":   3600,
			})
			return
		}
		assert.Equal(t, "Bearer refreshed-access", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
	}))
	t.Cleanup(srv.Close)

	database := openTestDB(t)
	gateway := &gcal.Gateway{Endpoint: srv.URL + "/"}
	h := NewCalendarHandlers(database, gateway, &auth.Refresher{TokenURL: srv.URL + "/token"})

	session, err := db.CreateSession(database, "", models.SessionToken{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(-time.Hour).Unix(),
	}, 24*time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/calendar/events", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.ID.String()})
	w := httptest.NewRecorder()
	h.HandleListEvents(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	stored, err := db.GetSession(database, session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "refreshed-access", stored.Token.AccessToken)
	assert.Equal(t, "refresh", stored.Token.RefreshToken)
}
