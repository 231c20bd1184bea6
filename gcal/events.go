// ABOUTME: List, create, and delete operations on the user's primary calendar
// ABOUTME: Translates between app event shapes and the Calendar API schema
package gcal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harperreed/mindcoach/models"
)

const primaryCalendar = "primary"

// Default reminders for events created through the coach: a popup half an
// hour out and an email an hour out. Caller-supplied reminders replace these
// entirely, no merging.
var defaultReminderOverrides = []*calendar.EventReminder{
	{Method: "popup", Minutes: 30},
	{Method: "email", Minutes: 60},
}

// ListUpcoming fetches upcoming events ordered soonest first, with recurring
// events expanded to single instances. The API is asked for events from
// timeMin onward, and the response is re-filtered because the API treats
// all-day event boundaries loosely: an all-day event dated today still counts
// as upcoming until the end of that day.
func (g *Gateway) ListUpcoming(ctx context.Context, accessToken string, maxResults int64, timeMin time.Time) ([]models.CalendarEvent, error) {
	service, err := g.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if timeMin.IsZero() {
		timeMin = g.now()
	}

	response, err := service.Events.List(primaryCalendar).
		TimeMin(timeMin.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]models.CalendarEvent, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Start == nil {
			continue
		}

		if item.Start.Date != "" {
			// All-day event: upcoming until the end of its date.
			day, err := time.ParseInLocation("2006-01-02", item.Start.Date, time.Local)
			if err != nil {
				continue
			}
			endOfDay := day.Add(24*time.Hour - time.Second)
			if endOfDay.Before(timeMin) {
				continue
			}
		} else {
			start, err := time.Parse(time.RFC3339, item.Start.DateTime)
			if err != nil {
				continue
			}
			if start.Before(timeMin) {
				continue
			}
		}

		events = append(events, eventToModel(item))
	}

	return events, nil
}

// CreateEvent inserts a timed event on the primary calendar. Start and end
// are expressed in the server's local timezone, and default reminders apply
// unless params carries its own reminder configuration.
func (g *Gateway) CreateEvent(ctx context.Context, accessToken string, params models.CreateEventParams) (*models.CalendarEvent, error) {
	service, err := g.service(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	timeZone := localTimeZone()

	event := &calendar.Event{
		Summary:     params.Summary,
		Description: params.Description,
		Location:    params.Location,
		Start: &calendar.EventDateTime{
			DateTime: params.StartTime.In(time.Local).Format(time.RFC3339),
			TimeZone: timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: params.EndTime.In(time.Local).Format(time.RFC3339),
			TimeZone: timeZone,
		},
	}

	if params.Reminders != nil {
		overrides := make([]*calendar.EventReminder, len(params.Reminders.Overrides))
		for i, o := range params.Reminders.Overrides {
			overrides[i] = &calendar.EventReminder{Method: o.Method, Minutes: o.Minutes}
		}
		event.Reminders = &calendar.EventReminders{
			UseDefault:      params.Reminders.UseDefault,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		}
	} else {
		event.Reminders = &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       defaultReminderOverrides,
			ForceSendFields: []string{"UseDefault"},
		}
	}

	created, err := service.Events.Insert(primaryCalendar, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	result := eventToModel(created)
	if result.Summary == "" || result.Summary == untitledEvent {
		result.Summary = params.Summary
	}

	return &result, nil
}

// DeleteEvent removes an event from the primary calendar.
func (g *Gateway) DeleteEvent(ctx context.Context, accessToken, eventID string) error {
	service, err := g.service(ctx, accessToken)
	if err != nil {
		return err
	}

	if err := service.Events.Delete(primaryCalendar, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

const untitledEvent = "Untitled Event"

func eventToModel(item *calendar.Event) models.CalendarEvent {
	event := models.CalendarEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		HTMLLink:    item.HtmlLink,
	}
	if event.Summary == "" {
		event.Summary = untitledEvent
	}
	if item.Start != nil {
		if item.Start.DateTime != "" {
			event.Start = item.Start.DateTime
		} else {
			event.Start = item.Start.Date
		}
	}
	if item.End != nil {
		if item.End.DateTime != "" {
			event.End = item.End.DateTime
		} else {
			event.End = item.End.Date
		}
	}
	return event
}

func localTimeZone() string {
	zone := time.Local.String()
	if zone == "" || zone == "Local" {
		return "UTC"
	}
	return zone
}

// IsAuthError reports whether an upstream calendar failure means the access
// token is no longer honored, so the caller should re-authenticate instead of
// retrying. The Calendar API signals this inconsistently: sometimes a 401,
// sometimes phrases buried in the error message.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 401 {
		return true
	}

	msg := err.Error()
	for _, phrase := range []string{
		"invalid_grant",
		"Token has been expired",
		"Invalid Credentials",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
