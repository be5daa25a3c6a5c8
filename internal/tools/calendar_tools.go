package tools

import (
	"context"

	"github.com/nbruun/whisp/internal/calendar"
	"github.com/nbruun/whisp/internal/logging"
)

// CreateCalendarEventTool creates a calendar event and invites attendees.
type CreateCalendarEventTool struct {
	cal *calendar.Service
	log *logging.Logger
}

// NewCreateCalendarEventTool creates the create-calendar-event tool.
func NewCreateCalendarEventTool(cal *calendar.Service, log *logging.Logger) *CreateCalendarEventTool {
	return &CreateCalendarEventTool{cal: cal, log: log.Sub("tools.create-calendar-event")}
}

func (t *CreateCalendarEventTool) Name() string { return "create-calendar-event" }

func (t *CreateCalendarEventTool) Description() string {
	return "Creates a calendar event and invites specified attendees. " +
		"If you do not know the user email, you must ask for it. " +
		"You must use the startDateTime and endDateTime parameters for start and end dates and times. " +
		"Use user input to infer time to your best ability. " +
		"You can use parse-date-to-iso8601 to convert natural language into the required ISO 8601 format for startDateTime and endDateTime."
}

func (t *CreateCalendarEventTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "The title of the calendar event.",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "A detailed description of the event.",
			},
			"startDateTime": map[string]any{
				"type":        "string",
				"description": "The start date and time of the event. Can be natural language (e.g., \"tomorrow at 10am\"). Use the parse-date-to-iso8601 tool to convert natural language to ISO 8601 format.",
			},
			"endDateTime": map[string]any{
				"type":        "string",
				"description": "The end date and time of the event. Can be natural language (e.g., \"in one hour\"). Use the parse-date-to-iso8601 tool to convert natural language to ISO 8601 format.",
			},
			"attendees": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "A list of attendee emails to invite. Only use if the user asks to create an event for someone else.",
			},
			"userEmail": map[string]any{
				"type":        "string",
				"description": "The user's email address. If not provided, you must ask the user for their email.",
			},
		},
		"required": []string{"title", "description", "startDateTime", "endDateTime"},
	}
}

func (t *CreateCalendarEventTool) Call(ctx context.Context, args map[string]any) string {
	title, ok := stringArg(args, "title")
	if !ok {
		return missingArg("title")
	}
	start, ok := stringArg(args, "startDateTime")
	if !ok {
		return missingArg("startDateTime")
	}
	end, ok := stringArg(args, "endDateTime")
	if !ok {
		return missingArg("endDateTime")
	}

	res := t.cal.CreateEvent(ctx, calendar.EventDetails{
		Title:         title,
		Description:   optionalStringArg(args, "description"),
		StartDateTime: start,
		EndDateTime:   end,
		Attendees:     stringSliceArg(args, "attendees"),
		UserEmail:     optionalStringArg(args, "userEmail"),
	})
	if !res.Success {
		return "Failed to create event: " + res.Message
	}
	return res.Message
}

// ParseDateTool converts natural-language dates to ISO 8601.
type ParseDateTool struct {
	dates *calendar.DateParser
}

// NewParseDateTool creates the parse-date-to-iso8601 tool.
func NewParseDateTool(dates *calendar.DateParser) *ParseDateTool {
	return &ParseDateTool{dates: dates}
}

func (t *ParseDateTool) Name() string { return "parse-date-to-iso8601" }

func (t *ParseDateTool) Description() string {
	return "This is tool to help you specify dates and times in natural language. " +
		"Converts a natural language date/time string to ISO 8601 format. " +
		"Assumes CET timezone (Europe/Berlin) if not specified."
}

func (t *ParseDateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"dateString": map[string]any{
				"type":        "string",
				"description": "The natural language date/time string to convert, e.g., \"tomorrow at 10am\".",
			},
		},
		"required": []string{"dateString"},
	}
}

func (t *ParseDateTool) Call(_ context.Context, args map[string]any) string {
	dateString, ok := stringArg(args, "dateString")
	if !ok {
		return missingArg("dateString")
	}

	iso, err := t.dates.ParseToISO8601(dateString)
	if err != nil {
		return "Could not parse date string."
	}
	return iso
}
