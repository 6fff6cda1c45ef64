package recur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyflow/internal/datekey"
	"studyflow/internal/model"
)

func keys(ss ...string) []datekey.DateKey {
	out := make([]datekey.DateKey, len(ss))
	for i, s := range ss {
		out[i] = datekey.DateKey(s)
	}
	return out
}

func window(start, end string) Window {
	return Window{Start: datekey.DateKey(start), End: datekey.DateKey(end)}
}

func TestExpandNonRecurring(t *testing.T) {
	ev := model.CalendarEvent{ID: "e1", Title: "Midterm", Date: "2024-06-15"}

	got, err := Expand(ev, window("2024-06-01", "2024-06-30"))
	require.NoError(t, err)
	assert.Equal(t, keys("2024-06-15"), got)

	got, err = Expand(ev, window("2024-07-01", "2024-07-31"))
	require.NoError(t, err)
	assert.Empty(t, got)

	// Boundary dates are inclusive.
	got, err = Expand(ev, window("2024-06-15", "2024-06-15"))
	require.NoError(t, err)
	assert.Equal(t, keys("2024-06-15"), got)
}

func TestExpandDaily(t *testing.T) {
	ev := model.CalendarEvent{
		ID:                "e1",
		Date:              "2024-03-10",
		IsRecurring:       true,
		RecurrencePattern: model.RecurDaily,
	}

	got, err := Expand(ev, window("2024-03-08", "2024-03-12"))
	require.NoError(t, err)
	assert.Equal(t, keys("2024-03-10", "2024-03-11", "2024-03-12"), got)
}

func TestExpandWeekly(t *testing.T) {
	// 2024-01-01 is a Monday.
	ev := model.CalendarEvent{
		ID:                "e1",
		Date:              "2024-01-01",
		IsRecurring:       true,
		RecurrencePattern: model.RecurWeekly,
	}

	// A three-week window yields exactly three Mondays.
	got, err := Expand(ev, window("2024-01-01", "2024-01-21"))
	require.NoError(t, err)
	assert.Equal(t, keys("2024-01-01", "2024-01-08", "2024-01-15"), got)

	// Window starting past the anchor picks up the next matching weekday.
	got, err = Expand(ev, window("2024-01-08", "2024-01-21"))
	require.NoError(t, err)
	assert.Equal(t, keys("2024-01-08", "2024-01-15"), got)
}

func TestExpandNeverBeforeAnchor(t *testing.T) {
	ev := model.CalendarEvent{
		ID:                "e1",
		Date:              "2024-01-15",
		IsRecurring:       true,
		RecurrencePattern: model.RecurWeekly,
	}

	// The window reaches back before the anchor; no occurrence may.
	got, err := Expand(ev, window("2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, keys("2024-01-15", "2024-01-22", "2024-01-29"), got)
}

func TestExpandMonthlySkipsShortMonths(t *testing.T) {
	// Anchored on day 31 and expanded over Jan-Apr: February has no 31st
	// and April has 30 days, so both are skipped outright, never clamped.
	ev := model.CalendarEvent{
		ID:                "e1",
		Date:              "2024-01-31",
		IsRecurring:       true,
		RecurrencePattern: model.RecurMonthly,
	}

	got, err := Expand(ev, window("2024-01-01", "2024-04-30"))
	require.NoError(t, err)
	assert.Equal(t, keys("2024-01-31", "2024-03-31"), got)
}

func TestExpandMonthlyMidMonth(t *testing.T) {
	ev := model.CalendarEvent{
		ID:                "e1",
		Date:              "2024-01-15",
		IsRecurring:       true,
		RecurrencePattern: model.RecurMonthly,
	}

	got, err := Expand(ev, window("2024-01-01", "2024-04-30"))
	require.NoError(t, err)
	assert.Equal(t, keys("2024-01-15", "2024-02-15", "2024-03-15", "2024-04-15"), got)
}

func TestExpandInvalidRecurrence(t *testing.T) {
	tests := []struct {
		name    string
		pattern model.RecurrencePattern
	}{
		{name: "missing pattern", pattern: ""},
		{name: "unknown pattern", pattern: "fortnightly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := model.CalendarEvent{
				ID:                "e1",
				Date:              "2024-01-01",
				IsRecurring:       true,
				RecurrencePattern: tt.pattern,
			}
			_, err := Expand(ev, window("2024-01-01", "2024-01-31"))
			assert.ErrorIs(t, err, ErrInvalidRecurrence)
		})
	}
}

func TestExpandInvertedWindow(t *testing.T) {
	ev := model.CalendarEvent{ID: "e1", Date: "2024-01-01"}
	_, err := Expand(ev, window("2024-02-01", "2024-01-01"))
	require.Error(t, err)
}

func TestExpandIsPure(t *testing.T) {
	ev := model.CalendarEvent{
		ID:                "e1",
		Date:              "2024-01-01",
		IsRecurring:       true,
		RecurrencePattern: model.RecurDaily,
	}
	win := window("2024-01-01", "2024-01-05")

	first, err := Expand(ev, win)
	require.NoError(t, err)
	second, err := Expand(ev, win)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExpandAll(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "a", Title: "Standup", Date: "2024-01-01", IsRecurring: true, RecurrencePattern: model.RecurWeekly},
		{ID: "b", Title: "Dentist", Date: "2024-01-03"},
	}

	occs, err := ExpandAll(events, window("2024-01-01", "2024-01-10"))
	require.NoError(t, err)
	require.Len(t, occs, 3)
	assert.Equal(t, "a", occs[0].Event.ID)
	assert.Equal(t, datekey.DateKey("2024-01-01"), occs[0].Date)
	assert.Equal(t, datekey.DateKey("2024-01-08"), occs[1].Date)
	assert.Equal(t, "b", occs[2].Event.ID)

	// One bad event fails the whole expansion.
	events = append(events, model.CalendarEvent{ID: "c", Date: "2024-01-05", IsRecurring: true})
	_, err = ExpandAll(events, window("2024-01-01", "2024-01-10"))
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}
