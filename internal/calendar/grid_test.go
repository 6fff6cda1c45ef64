package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyflow/internal/datekey"
	"studyflow/internal/model"
)

func TestBuildMonthGridDecember2024(t *testing.T) {
	// December 1st 2024 falls on a Sunday: zero leading padding, then 31
	// day cells.
	grid, err := BuildMonthGrid(2024, time.December, nil, "2024-12-25", Options{})
	require.NoError(t, err)

	require.Len(t, grid.Cells, 31)
	assert.Equal(t, 1, grid.Cells[0].Day)
	assert.Equal(t, 31, grid.Cells[30].Day)
	assert.False(t, grid.Cells[0].Empty())

	// Only the injected reference date is marked.
	for i, cell := range grid.Cells {
		assert.Equal(t, i == 24, cell.IsToday, "cell %d", i)
	}
}

func TestBuildMonthGridLeadingPadding(t *testing.T) {
	// February 1st 2024 is a Thursday: four leading empties, 29 leap days.
	grid, err := BuildMonthGrid(2024, time.February, nil, "2023-01-01", Options{})
	require.NoError(t, err)

	require.Len(t, grid.Cells, 4+29)
	for i := 0; i < 4; i++ {
		assert.True(t, grid.Cells[i].Empty(), "cell %d", i)
	}
	assert.Equal(t, 1, grid.Cells[4].Day)
	assert.Equal(t, 29, grid.Cells[len(grid.Cells)-1].Day)
}

func TestBuildMonthGridFixedSixRows(t *testing.T) {
	grid, err := BuildMonthGrid(2024, time.February, nil, "2024-02-01", Options{FixedSixRows: true})
	require.NoError(t, err)

	require.Len(t, grid.Cells, 42)
	for _, cell := range grid.Cells[33:] {
		assert.True(t, cell.Empty())
	}
}

func TestBuildMonthGridBucketsOccurrences(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "w", Title: "Algorithms class", Date: "2024-12-02", StartTime: "10:00", EndTime: "11:30",
			IsRecurring: true, RecurrencePattern: model.RecurWeekly},
		{ID: "s", Title: "Dentist", Date: "2024-12-09", StartTime: "08:00", EndTime: "09:00"},
	}

	grid, err := BuildMonthGrid(2024, time.December, events, "2024-12-01", Options{})
	require.NoError(t, err)

	// Weekly Mondays in December 2024: 2, 9, 16, 23, 30.
	for _, day := range []int{2, 16, 23, 30} {
		require.Len(t, grid.Cells[day-1].Occurrences, 1, "day %d", day)
		assert.Equal(t, "w", grid.Cells[day-1].Occurrences[0].Event.ID)
	}

	// December 9th has both; the earlier start time sorts first.
	ninth := grid.Cells[8].Occurrences
	require.Len(t, ninth, 2)
	assert.Equal(t, "s", ninth[0].Event.ID)
	assert.Equal(t, "w", ninth[1].Event.ID)

	// Off-Mondays carry nothing.
	assert.Empty(t, grid.Cells[0].Occurrences)
	assert.Empty(t, grid.Cells[10].Occurrences)
}

func TestBuildMonthGridSortTieBreak(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "b", Title: "Physics review", Date: "2024-12-05", StartTime: "14:00", EndTime: "15:00"},
		{ID: "a", Title: "Chemistry lab", Date: "2024-12-05", StartTime: "14:00", EndTime: "16:00"},
	}

	grid, err := BuildMonthGrid(2024, time.December, events, "2024-12-01", Options{})
	require.NoError(t, err)

	occs := grid.Cells[4].Occurrences
	require.Len(t, occs, 2)
	assert.Equal(t, "Chemistry lab", occs[0].Event.Title)
	assert.Equal(t, "Physics review", occs[1].Event.Title)
}

func TestBuildMonthGridRejectsBadInput(t *testing.T) {
	_, err := BuildMonthGrid(2024, time.Month(13), nil, "2024-01-01", Options{})
	require.Error(t, err)

	bad := []model.CalendarEvent{{ID: "x", Date: "2024-12-01", IsRecurring: true}}
	_, err = BuildMonthGrid(2024, time.December, bad, "2024-12-01", Options{})
	require.Error(t, err)
}

func TestBuildMonthGridDateKeys(t *testing.T) {
	grid, err := BuildMonthGrid(2025, time.January, nil, "2025-01-01", Options{})
	require.NoError(t, err)

	for _, cell := range grid.Cells {
		if cell.Empty() {
			continue
		}
		assert.Equal(t, datekey.New(2025, time.January, cell.Day), cell.Date)
	}
}
