package model

import "studyflow/internal/datekey"

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// SleepQuality is the ordinal quality scale of a sleep record.
type SleepQuality string

const (
	SleepPoor      SleepQuality = "poor"
	SleepFair      SleepQuality = "fair"
	SleepGood      SleepQuality = "good"
	SleepExcellent SleepQuality = "excellent"
)

// EventType classifies a calendar event.
type EventType string

const (
	EventTask     EventType = "task"
	EventExam     EventType = "exam"
	EventClass    EventType = "class"
	EventMeeting  EventType = "meeting"
	EventPersonal EventType = "personal"
)

// RecurrencePattern is the repeat rule of a recurring calendar event.
type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
)

// Task is a to-do item. DueDate is either a bare DateKey or a date-time
// string prefixed by one; day matching is always by prefix.
type Task struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	DueDate   string   `json:"due_date"`
	Completed bool     `json:"completed"`
	Priority  Priority `json:"priority"`
}

// SleepRecord is one night of sleep. Records are kept in the order they
// were logged; the most recently appended record is "last sleep".
type SleepRecord struct {
	ID       string          `json:"id"`
	Date     datekey.DateKey `json:"date"`
	Duration int             `json:"duration_minutes"`
	Quality  SleepQuality    `json:"quality"`
}

// PomodoroSession is one focus session. StartTime is a DateKey-prefixed
// timestamp.
type PomodoroSession struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	Completed bool   `json:"completed"`
}

// Goal is a long-running objective with manual progress tracking.
type Goal struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Progress  int    `json:"progress"` // 0-100
	Completed bool   `json:"completed"`
}

// Habit tracks per-day completion. CompletedDates is kept sorted and
// duplicate-free by the store.
type Habit struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	CompletedDates []datekey.DateKey `json:"completed_dates"`
	Streak         int               `json:"streak"`
	LongestStreak  int               `json:"longest_streak"`
}

// CalendarEvent is a logical calendar event before recurrence expansion.
// Date is the anchor occurrence; recurrence is computed forward-only from
// it. A non-recurring event has exactly one occurrence, its anchor date.
type CalendarEvent struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Date      datekey.DateKey `json:"date"`
	StartTime string          `json:"start_time"` // HH:MM, 24h
	EndTime   string          `json:"end_time"`   // HH:MM, 24h
	Type      EventType       `json:"type"`
	Color     string          `json:"color"`
	Location  string          `json:"location,omitempty"`

	IsRecurring       bool              `json:"is_recurring"`
	RecurrencePattern RecurrencePattern `json:"recurrence_pattern,omitempty"`
}

// Occurrence is a single concrete instance of an event after recurrence
// expansion, bucketed into its calendar day.
type Occurrence struct {
	Event CalendarEvent   `json:"event"`
	Date  datekey.DateKey `json:"date"`
}
