// ABOUTME: Google sign-in route handlers: login redirect, callback, logout, session info
// ABOUTME: Issues the session cookie once the OAuth code exchange succeeds
package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/harperreed/mindcoach/auth"
	"github.com/harperreed/mindcoach/db"
)

const stateCookieName = "mindcoach_oauth_state"

type AuthHandlers struct {
	db         *sql.DB
	oauth      *oauth2.Config
	sessionTTL time.Duration

	// userInfoURL overrides Google's userinfo endpoint in tests.
	userInfoURL string
}

func NewAuthHandlers(database *sql.DB, oauthConfig *oauth2.Config, sessionTTL time.Duration) *AuthHandlers {
	return &AuthHandlers{db: database, oauth: oauthConfig, sessionTTL: sessionTTL}
}

// HandleLogin starts the OAuth flow on GET /auth/login.
func (h *AuthHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.oauth.ClientID == "" || h.oauth.ClientSecret == "" {
		respondError(w, http.StatusInternalServerError,
			"Google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	http.Redirect(w, r, h.oauth.AuthCodeURL(state, auth.AuthCodeOptions()...), http.StatusFound)
}

// HandleCallback completes the OAuth flow on GET /auth/callback: verifies the
// state, exchanges the code, creates the session, and sets the cookie.
func (h *AuthHandlers) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		respondError(w, http.StatusBadRequest, "OAuth state mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	oauthToken, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Printf("[auth] code exchange failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to complete sign-in")
		return
	}

	token := auth.SessionTokenFromOAuth(oauthToken)

	// The email is informational only; sign-in proceeds without it.
	email := ""
	if info, err := auth.FetchUserInfo(r.Context(), nil, token.AccessToken, h.userInfoURL); err != nil {
		log.Printf("[auth] failed to fetch user info: %v", err)
	} else {
		email = info.Email
	}

	session, err := db.CreateSession(h.db, email, token, h.sessionTTL)
	if err != nil {
		log.Printf("[auth] failed to create session: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	setSessionCookie(w, session)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogout deletes the session on POST /auth/logout.
func (h *AuthHandlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			if err := db.DeleteSession(h.db, id); err != nil {
				log.Printf("[auth] failed to delete session: %v", err)
			}
		}
	}

	clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

type SessionResponse struct {
	Authenticated     bool   `json:"authenticated"`
	Email             string `json:"email,omitempty"`
	HasCalendarAccess bool   `json:"hasCalendarAccess"`
}

// HandleSession reports auth status on GET /auth/session so the UI can show
// the right affordance.
func (h *AuthHandlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFromRequest(h.db, r)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if session == nil {
		respondJSON(w, http.StatusOK, SessionResponse{})
		return
	}

	respondJSON(w, http.StatusOK, SessionResponse{
		Authenticated:     true,
		Email:             session.Email,
		HasCalendarAccess: session.Token.Usable(time.Now()),
	})
}
