// ABOUTME: Access token refresh against the provider's token endpoint
// ABOUTME: Request-scoped value in, refreshed value out; callers persist the result
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/harperreed/mindcoach/models"
)

// Refresher exchanges refresh tokens for fresh access tokens. It never
// mutates shared state: ValidAccessToken takes the current token value and
// returns the (possibly updated) value for the caller to persist.
//
// Two concurrent refreshes for the same session are not guarded against;
// Google tolerates duplicate refresh grants and the last write wins.
type Refresher struct {
	ClientID     string
	ClientSecret string

	// TokenURL overrides the provider token endpoint, for tests.
	TokenURL string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Now defaults to time.Now, injectable for expiry tests.
	Now func() time.Time
}

func (r *Refresher) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Refresher) tokenURL() string {
	if r.TokenURL != "" {
		return r.TokenURL
	}
	return google.Endpoint.TokenURL
}

func (r *Refresher) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return http.DefaultClient
}

// refreshResponse is the provider's token endpoint response body.
type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// ValidAccessToken returns an access token usable right now, refreshing if
// needed. The returned SessionToken is the value the caller must store back
// to the session; on refresh failure it comes back tagged with
// models.TokenErrRefreshFailed alongside an AuthError.
func (r *Refresher) ValidAccessToken(ctx context.Context, tok models.SessionToken) (models.SessionToken, string, error) {
	now := r.now()

	// Fast path: still valid, zero network calls.
	if !tok.Expired(now) && tok.AccessToken != "" {
		return tok, tok.AccessToken, nil
	}

	if tok.RefreshToken == "" {
		return tok, "", &AuthError{Reason: "no refresh token"}
	}

	form := url.Values{
		"client_id":     {r.ClientID},
		"client_secret": {r.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {tok.RefreshToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		tok.Error = models.TokenErrRefreshFailed
		return tok, "", &AuthError{Reason: fmt.Sprintf("failed to build refresh request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient().Do(req)
	if err != nil {
		tok.Error = models.TokenErrRefreshFailed
		return tok, "", &AuthError{Reason: fmt.Sprintf("token refresh failed: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		tok.Error = models.TokenErrRefreshFailed
		return tok, "", &AuthError{Reason: fmt.Sprintf("token refresh returned status %d", resp.StatusCode)}
	}

	var refreshed refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		tok.Error = models.TokenErrRefreshFailed
		return tok, "", &AuthError{Reason: fmt.Sprintf("failed to decode refresh response: %v", err)}
	}

	tok.AccessToken = refreshed.AccessToken
	tok.ExpiresAt = now.Add(time.Duration(refreshed.ExpiresIn) * time.Second).Unix()
	// Providers may omit the refresh token, meaning "unchanged".
	if refreshed.RefreshToken != "" {
		tok.RefreshToken = refreshed.RefreshToken
	}
	tok.Error = ""

	return tok, tok.AccessToken, nil
}
