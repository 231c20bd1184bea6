// ABOUTME: Calendar API client setup for Google Calendar integration
// ABOUTME: Creates per-request Calendar services from a bare access token
package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Gateway wraps the Google Calendar v3 API for the user's primary calendar.
// Each call authenticates with the caller-supplied access token; the gateway
// holds no credentials of its own.
type Gateway struct {
	// Endpoint overrides the Calendar API base URL, for tests.
	Endpoint string

	// Now defaults to time.Now, injectable for filtering tests.
	Now func() time.Time
}

func (g *Gateway) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// service builds a Calendar API client bound to the given access token.
func (g *Gateway) service(ctx context.Context, accessToken string) (*calendar.Service, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	opts := []option.ClientOption{option.WithTokenSource(source)}
	if g.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.Endpoint))
	}

	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return service, nil
}
