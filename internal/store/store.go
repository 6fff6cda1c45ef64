// Package store is the record collaborator: it owns the mutable arrays of
// tasks, sleep records, pomodoro sessions, goals, habits and calendar
// events, and hands out immutable snapshots for the derivation packages to
// read. The derivation code never sees the live slices.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyflow/internal/datekey"
	"studyflow/internal/model"
	"studyflow/internal/recur"
	"studyflow/internal/stats"
)

// ErrNotFound reports an unknown record ID.
var ErrNotFound = errors.New("record not found")

// Snapshot is a point-in-time copy of every record array. Aggregators read
// a snapshot and nothing else, so concurrent recomputation needs no
// coordination.
type Snapshot struct {
	Tasks            []model.Task
	SleepRecords     []model.SleepRecord
	PomodoroSessions []model.PomodoroSession
	Goals            []model.Goal
	Habits           []model.Habit
	Events           []model.CalendarEvent
}

// ScoreEntry is one captured daily productivity score.
type ScoreEntry struct {
	Date       datekey.DateKey `json:"date"`
	Score      float64         `json:"score"`
	CapturedAt time.Time       `json:"captured_at"`
}

// RecordStore holds all records behind a single lock. Reads take a
// snapshot; writes go through the typed mutators below, which also mint
// IDs and validate what crosses the boundary.
type RecordStore struct {
	mu sync.RWMutex

	tasks    []model.Task
	sleep    []model.SleepRecord
	sessions []model.PomodoroSession
	goals    []model.Goal
	habits   []model.Habit
	events   []model.CalendarEvent

	history []ScoreEntry
}

func New() *RecordStore {
	return &RecordStore{}
}

// Snapshot returns deep copies of every record array.
func (s *RecordStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Tasks:            append([]model.Task(nil), s.tasks...),
		SleepRecords:     append([]model.SleepRecord(nil), s.sleep...),
		PomodoroSessions: append([]model.PomodoroSession(nil), s.sessions...),
		Goals:            append([]model.Goal(nil), s.goals...),
		Habits:           append([]model.Habit(nil), s.habits...),
		Events:           append([]model.CalendarEvent(nil), s.events...),
	}
	// Habits carry a nested slice; copy it so snapshot holders cannot
	// observe later toggles.
	for i := range snap.Habits {
		snap.Habits[i].CompletedDates = append([]datekey.DateKey(nil), snap.Habits[i].CompletedDates...)
	}
	return snap
}

// AddTask stores t, minting an ID when absent, and returns the stored copy.
func (s *RecordStore) AddTask(t model.Task) model.Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return t
}

// ToggleTask flips the completion flag of the task with the given ID.
func (s *RecordStore) ToggleTask(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = !s.tasks[i].Completed
			return s.tasks[i], nil
		}
	}
	return model.Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
}

// DeleteTask removes the task with the given ID.
func (s *RecordStore) DeleteTask(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: task %s", ErrNotFound, id)
}

// AddSleepRecord appends r. Order of appending defines "last sleep".
func (s *RecordStore) AddSleepRecord(r model.SleepRecord) model.SleepRecord {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.sleep = append(s.sleep, r)
	s.mu.Unlock()
	return r
}

// AddPomodoroSession appends p.
func (s *RecordStore) AddPomodoroSession(p model.PomodoroSession) model.PomodoroSession {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.sessions = append(s.sessions, p)
	s.mu.Unlock()
	return p
}

// AddGoal validates and appends g. Progress outside 0-100 is rejected at
// this boundary rather than clamped into range.
func (s *RecordStore) AddGoal(g model.Goal) (model.Goal, error) {
	if g.Progress < 0 || g.Progress > 100 {
		return model.Goal{}, fmt.Errorf("goal %q: progress %d out of range 0-100", g.Title, g.Progress)
	}

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.goals = append(s.goals, g)
	s.mu.Unlock()
	return g, nil
}

// AddHabit appends h.
func (s *RecordStore) AddHabit(h model.Habit) model.Habit {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.habits = append(s.habits, h)
	s.mu.Unlock()
	return h
}

// ToggleHabitCompletion marks or unmarks the habit as completed on day and
// recomputes the streak counters relative to the injected reference date.
func (s *RecordStore) ToggleHabitCompletion(id string, day, ref datekey.DateKey) (model.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.habits {
		h := &s.habits[i]
		if h.ID != id {
			continue
		}

		removed := false
		for j, d := range h.CompletedDates {
			if d == day {
				h.CompletedDates = append(h.CompletedDates[:j], h.CompletedDates[j+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			h.CompletedDates = append(h.CompletedDates, day)
			stats.SortDates(h.CompletedDates)
		}

		h.Streak = stats.Streak(h.CompletedDates, ref)
		if h.Streak > h.LongestStreak {
			h.LongestStreak = h.Streak
		}
		return *h, nil
	}
	return model.Habit{}, fmt.Errorf("%w: habit %s", ErrNotFound, id)
}

// AddEvent validates and stores a calendar event. This is the validating
// boundary of the calendar core: malformed events are rejected here so the
// expansion code only ever sees well-formed input.
func (s *RecordStore) AddEvent(ev model.CalendarEvent) (model.CalendarEvent, error) {
	if _, err := datekey.Parse(string(ev.Date)); err != nil {
		return model.CalendarEvent{}, err
	}
	if ev.StartTime != "" && ev.EndTime != "" && ev.StartTime > ev.EndTime {
		return model.CalendarEvent{}, fmt.Errorf("event %q: start time %s after end time %s", ev.Title, ev.StartTime, ev.EndTime)
	}
	if ev.IsRecurring {
		switch ev.RecurrencePattern {
		case model.RecurDaily, model.RecurWeekly, model.RecurMonthly:
		default:
			return model.CalendarEvent{}, fmt.Errorf("%w: event %q has pattern %q", recur.ErrInvalidRecurrence, ev.Title, ev.RecurrencePattern)
		}
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
	return ev, nil
}

// DeleteEvent removes the event with the given ID.
func (s *RecordStore) DeleteEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: event %s", ErrNotFound, id)
}

// AppendScore records a captured daily score. An existing entry for the
// same date is overwritten, so re-running a rollup is harmless.
func (s *RecordStore) AppendScore(e ScoreEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.history {
		if s.history[i].Date == e.Date {
			s.history[i] = e
			return
		}
	}
	s.history = append(s.history, e)
}

// History returns a copy of the captured score entries, oldest first.
func (s *RecordStore) History() []ScoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ScoreEntry(nil), s.history...)
}
