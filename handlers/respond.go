// ABOUTME: Shared JSON response and session-cookie helpers for route handlers
// ABOUTME: Maps internal failures to the HTTP error taxonomy
package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/mindcoach/db"
	"github.com/harperreed/mindcoach/models"
)

const sessionCookieName = "mindcoach_session"

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[http] failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// sessionFromRequest resolves the session cookie to a stored session.
// Returns nil without error when the request carries no usable session.
func sessionFromRequest(database *sql.DB, r *http.Request) (*models.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, nil
	}

	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return nil, nil
	}

	return db.GetSession(database, id)
}

func setSessionCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// persistToken writes a refreshed token back to the session store. Failures
// are logged, not surfaced: the request already has its answer.
func persistToken(database *sql.DB, session *models.Session, updated models.SessionToken) {
	if session == nil || session.Token == updated {
		return
	}
	if err := db.UpdateSessionToken(database, session.ID, updated); err != nil {
		log.Printf("[http] failed to persist refreshed token: %v", err)
	}
}
