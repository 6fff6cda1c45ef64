package stats

import (
	"studyflow/internal/datekey"
	"studyflow/internal/model"
)

// WeeklyDay is one bar of the weekly chart.
type WeeklyDay struct {
	Date               datekey.DateKey `json:"date"`
	Label              string          `json:"label"` // short weekday name, display only
	CompletedTasks     int             `json:"completed_tasks"`
	CompletedPomodoros int             `json:"completed_pomodoros"`
}

// Weekly returns exactly seven entries covering [ref-6 days, ref], oldest
// to newest. A record belongs to a day when its date-time field starts
// with the day's key; records with no matching prefix are simply excluded.
func Weekly(tasks []model.Task, sessions []model.PomodoroSession, ref datekey.DateKey) []WeeklyDay {
	out := make([]WeeklyDay, 0, 7)
	for i := 6; i >= 0; i-- {
		day := ref.AddDays(-i)

		entry := WeeklyDay{
			Date:  day,
			Label: day.Time().Format("Mon"),
		}
		for _, t := range tasks {
			if t.Completed && day.PrefixOf(t.DueDate) {
				entry.CompletedTasks++
			}
		}
		for _, s := range sessions {
			if s.Completed && day.PrefixOf(s.StartTime) {
				entry.CompletedPomodoros++
			}
		}
		out = append(out, entry)
	}
	return out
}

// CategoryCount is one slice of the category breakdown.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ByCategory counts tasks per category label, ordered by first appearance.
// Tasks with an empty category are grouped under the given fallback label
// rather than silently dropped.
func ByCategory(tasks []model.Task, uncategorized string) []CategoryCount {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, t := range tasks {
		name := t.Category
		if name == "" {
			name = uncategorized
		}
		if _, seen := counts[name]; !seen {
			order = append(order, name)
		}
		counts[name]++
	}

	out := make([]CategoryCount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryCount{Name: name, Count: counts[name]})
	}
	return out
}

// DaySummary is the dashboard view for a single reference date.
type DaySummary struct {
	Date datekey.DateKey `json:"date"`

	TasksDue       int `json:"tasks_due"`
	TasksCompleted int `json:"tasks_completed"`
	Pomodoros      int `json:"pomodoros"`

	LastSleep         *model.SleepRecord `json:"last_sleep,omitempty"`
	SleepSignal       float64            `json:"sleep_signal"`
	ActiveGoals       int                `json:"active_goals"`
	Habits            int                `json:"habits"`
	HabitsCompleted   int                `json:"habits_completed"`
	ProductivityScore float64            `json:"productivity_score"`
}

// SummarizeDay computes the dashboard numbers for ref. "Last sleep" is the
// most recently appended sleep record regardless of its date.
func SummarizeDay(
	tasks []model.Task,
	sleep []model.SleepRecord,
	sessions []model.PomodoroSession,
	goals []model.Goal,
	habits []model.Habit,
	ref datekey.DateKey,
	w ScoreWeights,
) DaySummary {
	sum := DaySummary{Date: ref}

	for _, t := range tasks {
		if !ref.PrefixOf(t.DueDate) {
			continue
		}
		sum.TasksDue++
		if t.Completed {
			sum.TasksCompleted++
		}
	}

	for _, s := range sessions {
		if s.Completed && ref.PrefixOf(s.StartTime) {
			sum.Pomodoros++
		}
	}

	if len(sleep) > 0 {
		last := sleep[len(sleep)-1]
		sum.LastSleep = &last
		sum.SleepSignal = SleepQualitySignal(last.Quality)
	}

	for _, g := range goals {
		if !g.Completed {
			sum.ActiveGoals++
		}
	}

	sum.Habits = len(habits)
	for _, h := range habits {
		if habitCompletedOn(h, ref) {
			sum.HabitsCompleted++
		}
	}

	sum.ProductivityScore = Score(sum.TasksCompleted, sum.TasksDue, sum.Pomodoros, sum.SleepSignal, w)
	return sum
}

func habitCompletedOn(h model.Habit, day datekey.DateKey) bool {
	for _, d := range h.CompletedDates {
		if d == day {
			return true
		}
	}
	return false
}
