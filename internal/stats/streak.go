package stats

import (
	"sort"

	"studyflow/internal/datekey"
)

// Streak returns the length of the consecutive-day completion run ending
// at ref. A habit not completed on ref has a streak of 0, matching the
// "streak resets when you miss today" rule of the tracker.
func Streak(completedDates []datekey.DateKey, ref datekey.DateKey) int {
	if len(completedDates) == 0 {
		return 0
	}

	set := make(map[datekey.DateKey]struct{}, len(completedDates))
	for _, d := range completedDates {
		set[d] = struct{}{}
	}
	if _, ok := set[ref]; !ok {
		return 0
	}

	streak := 1
	for day := ref.AddDays(-1); ; day = day.AddDays(-1) {
		if _, ok := set[day]; !ok {
			break
		}
		streak++
	}
	return streak
}

// SortDates sorts date keys in place, oldest first. Lexicographic order on
// the canonical YYYY-MM-DD form is calendar order.
func SortDates(dates []datekey.DateKey) {
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
}
