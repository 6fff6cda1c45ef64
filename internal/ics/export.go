// Package ics renders the tracked calendar events as an iCalendar feed so
// external calendar clients can subscribe to the study schedule. Recurring
// events are exported with their RRULE rather than pre-expanded, leaving
// expansion to the consuming client.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"studyflow/internal/model"
)

const timeLayout = "15:04"

// Export serializes the events into an ICS payload. Event times are
// interpreted in loc; events without a start time are emitted as all-day.
// now is stamped as DTSTAMP so the output stays deterministic in tests.
func Export(events []model.CalendarEvent, loc *time.Location, now time.Time) (string, error) {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(now.UTC())
		ve.SetSummary(ev.Title)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Type != "" {
			// Use the raw property name to avoid constant variants across
			// library versions.
			ve.SetProperty(ical.ComponentProperty("CATEGORIES"), string(ev.Type))
		}

		if ev.StartTime == "" {
			day := ev.Date.Time()
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		} else {
			start, err := atTime(ev, ev.StartTime, loc)
			if err != nil {
				return "", err
			}
			end := start
			if ev.EndTime != "" {
				end, err = atTime(ev, ev.EndTime, loc)
				if err != nil {
					return "", err
				}
			}
			ve.SetStartAt(start)
			ve.SetEndAt(end)
		}

		if ev.IsRecurring {
			rule, err := rruleFor(ev.RecurrencePattern)
			if err != nil {
				return "", fmt.Errorf("event %q: %w", ev.Title, err)
			}
			ve.SetProperty(ical.ComponentPropertyRrule, rule)
		}
	}

	return cal.Serialize(), nil
}

// atTime combines the event's anchor date with an HH:MM clock time in loc.
func atTime(ev model.CalendarEvent, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %q: bad time %q: %w", ev.Title, clock, err)
	}
	day := ev.Date.Time()
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

func rruleFor(p model.RecurrencePattern) (string, error) {
	switch p {
	case model.RecurDaily:
		return "FREQ=DAILY", nil
	case model.RecurWeekly:
		return "FREQ=WEEKLY", nil
	case model.RecurMonthly:
		return "FREQ=MONTHLY", nil
	default:
		return "", fmt.Errorf("unsupported recurrence pattern %q", p)
	}
}
