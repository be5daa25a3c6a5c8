// Package calendar creates Google Calendar events on the user's behalf.
package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/nbruun/whisp/internal/logging"
)

// EventDetails describes the event to create. Start and end may be natural
// language; the end time is resolved relative to the start.
type EventDetails struct {
	Title         string
	Description   string
	StartDateTime string
	EndDateTime   string
	Attendees     []string
	UserEmail     string
}

// Result is the caller-visible outcome of an event creation. Failures are
// carried in Message, never as errors, so the model can recover
// conversationally.
type Result struct {
	Success bool
	Message string
}

// inserter is the slice of the Calendar API the service needs. Tests inject
// a fake; production uses the google-api client.
type inserter interface {
	Insert(ctx context.Context, calendarID string, ev *gcal.Event) (*gcal.Event, error)
}

type googleInserter struct {
	svc *gcal.Service
}

func (g googleInserter) Insert(ctx context.Context, calendarID string, ev *gcal.Event) (*gcal.Event, error) {
	return g.svc.Events.Insert(calendarID, ev).SendUpdates("all").Context(ctx).Do()
}

// Service creates calendar events via the Google Calendar API using
// application-default service-account credentials.
type Service struct {
	ins        inserter
	calendarID string
	dates      *DateParser
	log        *logging.Logger
}

// NewService builds a calendar service authenticated through application
// default credentials with the calendar scope.
func NewService(ctx context.Context, calendarID string, dates *DateParser, log *logging.Logger) (*Service, error) {
	httpClient, err := google.DefaultClient(ctx, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("calendar credentials: %w", err)
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("calendar client: %w", err)
	}
	return &Service{
		ins:        googleInserter{svc: svc},
		calendarID: calendarID,
		dates:      dates,
		log:        log.Sub("calendar"),
	}, nil
}

// NewServiceWithInserter wires a custom API backend. Used by tests.
func NewServiceWithInserter(ins inserter, calendarID string, dates *DateParser, log *logging.Logger) *Service {
	return &Service{ins: ins, calendarID: calendarID, dates: dates, log: log.Sub("calendar")}
}

// CreateEvent parses the requested times, invites the attendees (with the
// user's own email first when given), and inserts the event.
func (s *Service) CreateEvent(ctx context.Context, details EventDetails) Result {
	attendees := make([]string, 0, len(details.Attendees)+1)
	if details.UserEmail != "" && !contains(details.Attendees, details.UserEmail) {
		attendees = append(attendees, details.UserEmail)
	}
	attendees = append(attendees, details.Attendees...)

	start, err := s.dates.Parse(details.StartDateTime, time.Now())
	if err != nil {
		return Result{Message: fmt.Sprintf("Could not understand the start time: %q", details.StartDateTime)}
	}

	end, err := s.dates.Parse(details.EndDateTime, start)
	if err != nil {
		return Result{Message: fmt.Sprintf("Could not understand the end time: %q", details.EndDateTime)}
	}

	ev := &gcal.Event{
		Summary:     details.Title,
		Description: details.Description,
		Start:       &gcal.EventDateTime{DateTime: start.UTC().Format(time.RFC3339), TimeZone: "UTC"},
		End:         &gcal.EventDateTime{DateTime: end.UTC().Format(time.RFC3339), TimeZone: "UTC"},
	}
	for _, email := range attendees {
		ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{Email: email})
	}

	if _, err := s.ins.Insert(ctx, s.calendarID, ev); err != nil {
		s.log.Error().Err(err).Str("title", details.Title).Msg("creating calendar event failed")
		return Result{Message: "Failed to create calendar event."}
	}

	return Result{Success: true, Message: "Event created successfully."}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
