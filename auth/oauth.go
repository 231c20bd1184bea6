// ABOUTME: OAuth configuration and sign-in flow helpers for Google APIs
// ABOUTME: Builds the oauth2 config with calendar scopes and offline access
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/harperreed/mindcoach/models"
)

// userInfoURL is Google's OpenID userinfo endpoint, overridable in tests.
const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// NewOAuthConfig creates the OAuth2 config for Google sign-in with calendar
// access. Offline access and the consent prompt are requested at
// authorization time so the provider issues a refresh token.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"openid",
			"email",
			"profile",
			"https://www.googleapis.com/auth/calendar.readonly",
			"https://www.googleapis.com/auth/calendar.events",
		},
		Endpoint: google.Endpoint,
	}
}

// AuthCodeOptions are the extra authorization parameters used on sign-in.
// access_type=offline with prompt=consent makes Google return a refresh token.
func AuthCodeOptions() []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	}
}

// SessionTokenFromOAuth converts an exchanged oauth2 token into the session
// token triple stored with the user's session.
func SessionTokenFromOAuth(token *oauth2.Token) models.SessionToken {
	st := models.SessionToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		st.ExpiresAt = token.Expiry.Unix()
	} else {
		// Providers that omit expiry get a conservative one hour.
		st.ExpiresAt = time.Now().Add(time.Hour).Unix()
	}
	return st
}

// UserInfo is the subset of Google's userinfo response we keep.
type UserInfo struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	VerifiedEmail bool   `json:"verified_email"`
}

// FetchUserInfo looks up the signed-in user's profile with the freshly
// exchanged access token. infoURL may be empty to use Google's endpoint.
func FetchUserInfo(ctx context.Context, client *http.Client, accessToken, infoURL string) (*UserInfo, error) {
	if infoURL == "" {
		infoURL = userInfoURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	return &info, nil
}
