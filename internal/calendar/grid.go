// Package calendar builds the month view: a 7-column day grid with per-day
// event buckets, driven by recurrence expansion over the month window.
package calendar

import (
	"fmt"
	"sort"
	"time"

	"studyflow/internal/datekey"
	"studyflow/internal/model"
	"studyflow/internal/recur"
)

// Cell is one slot of the month grid. Padding cells (before day 1) have
// Day == 0 and no date.
type Cell struct {
	Day         int                `json:"day"`
	Date        datekey.DateKey    `json:"date,omitempty"`
	IsToday     bool               `json:"is_today"`
	Occurrences []model.Occurrence `json:"occurrences,omitempty"`
}

// Empty reports whether the cell is padding.
func (c Cell) Empty() bool { return c.Day == 0 }

// Grid is the built month view. Cells are laid out row-major, weeks of
// seven, Sunday first.
type Grid struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Cells []Cell     `json:"cells"`
}

// Options controls grid layout.
type Options struct {
	// FixedSixRows pads the grid to a full 6x7 = 42 cells for stable
	// visual height. When false the final week is left ragged.
	FixedSixRows bool
}

// BuildMonthGrid expands every event against [first, last] of the target
// month and buckets each occurrence into its day cell. Day cells are
// ordered 1..daysInMonth after the leading padding; each cell's
// occurrences are sorted by start time, ties broken by title.
//
// The "today" marking is a pure comparison against the caller-supplied
// reference date. The builder never reads the wall clock.
func BuildMonthGrid(year int, month time.Month, events []model.CalendarEvent, today datekey.DateKey, opts Options) (Grid, error) {
	if month < time.January || month > time.December {
		return Grid{}, fmt.Errorf("calendar: month %d out of range", month)
	}

	days := datekey.DaysInMonth(year, month)
	first := datekey.New(year, month, 1)
	last := datekey.New(year, month, days)

	occs, err := recur.ExpandAll(events, recur.Window{Start: first, End: last})
	if err != nil {
		return Grid{}, err
	}

	byDay := make(map[int][]model.Occurrence)
	for _, occ := range occs {
		byDay[occ.Date.Day()] = append(byDay[occ.Date.Day()], occ)
	}
	for _, bucket := range byDay {
		sort.SliceStable(bucket, func(i, j int) bool {
			a, b := bucket[i].Event, bucket[j].Event
			if a.StartTime != b.StartTime {
				return a.StartTime < b.StartTime
			}
			return a.Title < b.Title
		})
	}

	leading := int(first.Weekday()) // Sunday == 0
	cells := make([]Cell, 0, leading+days)
	for i := 0; i < leading; i++ {
		cells = append(cells, Cell{})
	}
	for day := 1; day <= days; day++ {
		date := datekey.New(year, month, day)
		cells = append(cells, Cell{
			Day:         day,
			Date:        date,
			IsToday:     date == today,
			Occurrences: byDay[day],
		})
	}

	if opts.FixedSixRows {
		for len(cells) < 42 {
			cells = append(cells, Cell{})
		}
	}

	return Grid{Year: year, Month: month, Cells: cells}, nil
}
