package calendar

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"calendareventservice/pkg/models"
)

const (
	// maxUpcoming caps how many events one fetch asks the provider for.
	maxUpcoming = 20

	noTitlePlaceholder = "(No title)"

	allDayLayout = "2006-01-02"
)

// Fetcher retrieves a user's upcoming events from Google Calendar and
// normalizes them into the public event shape.
type Fetcher struct {
	cfg *oauth2.Config
}

func NewFetcher(cfg *oauth2.Config) *Fetcher {
	return &Fetcher{cfg: cfg}
}

// Upcoming fetches the next events on the user's primary calendar, starting
// from now, with recurring events expanded and ordered by start time.
func (f *Fetcher) Upcoming(ctx context.Context, token *oauth2.Token) ([]models.Event, error) {
	client := f.cfg.Client(ctx, token)
	service, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	result, err := service.Events.List("primary").
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(time.Now().Format(time.RFC3339)).
		MaxResults(maxUpcoming).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return normalize(result.Items), nil
}

// normalize converts raw provider events into the public shape, dropping
// cancelled entries and entries without usable start/end timestamps.
func normalize(items []*gcal.Event) []models.Event {
	events := make([]models.Event, 0, len(items))
	for _, item := range items {
		if item.Status == "cancelled" {
			continue
		}
		start, ok := eventTime(item.Start)
		if !ok {
			continue
		}
		end, ok := eventTime(item.End)
		if !ok {
			continue
		}

		title := item.Summary
		if title == "" {
			title = noTitlePlaceholder
		}

		attendees := make([]string, 0, len(item.Attendees))
		for _, a := range item.Attendees {
			attendees = append(attendees, a.Email)
		}

		events = append(events, models.Event{
			ID:              item.Id,
			Title:           title,
			Start:           start,
			End:             end,
			DurationMinutes: int64(math.Round(end.Sub(start).Minutes())),
			Location:        item.Location,
			Attendees:       attendees,
		})
	}
	return events
}

// eventTime extracts the timestamp from a provider start/end field, preferring
// the timed DateTime over the all-day Date.
func eventTime(edt *gcal.EventDateTime) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if edt.Date != "" {
		t, err := time.Parse(allDayLayout, edt.Date)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// Summarize aggregates a normalized event list. First/last timestamps follow
// provider order; they are not recomputed as min/max.
func Summarize(events []models.Event) models.Summary {
	summary := models.Summary{TotalEvents: len(events)}
	var totalMinutes int64
	for _, e := range events {
		totalMinutes += e.DurationMinutes
	}
	summary.TotalHours = float64(totalMinutes) / 60
	if len(events) > 0 {
		first := events[0].Start
		last := events[len(events)-1].End
		summary.FirstEventStart = &first
		summary.LastEventEnd = &last
	}
	return summary
}
