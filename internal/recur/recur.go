// Package recur expands (possibly recurring) calendar events into concrete
// occurrence dates within a query window. Expansion is forward-only from the
// event's anchor date and is a pure function of its inputs.
package recur

import (
	"errors"
	"fmt"

	"github.com/teambition/rrule-go"

	"studyflow/internal/datekey"
	"studyflow/internal/model"
)

// ErrInvalidRecurrence reports a recurring event without a recognized
// recurrence pattern. This is a hard error, never silently defaulted.
var ErrInvalidRecurrence = errors.New("invalid recurrence pattern")

// Window is the inclusive [Start, End] date range being queried.
type Window struct {
	Start datekey.DateKey
	End   datekey.DateKey
}

// Expand returns the ordered occurrence dates of ev inside the window.
//
//   - Non-recurring: the anchor date if it is in-window, else nothing.
//   - daily: every date from max(anchor, window start) through window end.
//   - weekly: the anchor's weekday, stepping 7 days.
//   - monthly: the anchor's day-of-month, one per month; months shorter
//     than the anchor day are skipped rather than clamped, so a day-31
//     event never silently shifts onto day 30.
//
// Occurrences before the anchor are never produced, even when the window
// reaches further back.
func Expand(ev model.CalendarEvent, win Window) ([]datekey.DateKey, error) {
	if win.End.Before(win.Start) {
		return nil, fmt.Errorf("recur: window end %s before start %s", win.End, win.Start)
	}

	if !ev.IsRecurring {
		if ev.Date.Before(win.Start) || ev.Date.After(win.End) {
			return nil, nil
		}
		return []datekey.DateKey{ev.Date}, nil
	}

	freq, err := frequencyOf(ev)
	if err != nil {
		return nil, err
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    freq,
		Dtstart: ev.Date.Time(),
	})
	if err != nil {
		return nil, fmt.Errorf("recur: build rule for event %s: %w", ev.ID, err)
	}

	// Between never yields instances before Dtstart, which gives the
	// forward-only anchor semantics for free. All date keys sit at
	// midnight UTC, so inclusive bounds line up exactly.
	times := r.Between(win.Start.Time(), win.End.Time(), true)

	out := make([]datekey.DateKey, 0, len(times))
	for _, t := range times {
		out = append(out, datekey.FromTime(t))
	}
	return out, nil
}

// ExpandAll expands every event against the window and returns the flat
// occurrence list. Order follows the input event order, each event's
// occurrences oldest first.
func ExpandAll(events []model.CalendarEvent, win Window) ([]model.Occurrence, error) {
	occs := make([]model.Occurrence, 0, len(events))
	for _, ev := range events {
		dates, err := Expand(ev, win)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			occs = append(occs, model.Occurrence{Event: ev, Date: d})
		}
	}
	return occs, nil
}

func frequencyOf(ev model.CalendarEvent) (rrule.Frequency, error) {
	switch ev.RecurrencePattern {
	case model.RecurDaily:
		return rrule.DAILY, nil
	case model.RecurWeekly:
		return rrule.WEEKLY, nil
	case model.RecurMonthly:
		return rrule.MONTHLY, nil
	default:
		return 0, fmt.Errorf("%w: event %s has pattern %q", ErrInvalidRecurrence, ev.ID, ev.RecurrencePattern)
	}
}
