// Package stats turns independent task/sleep/pomodoro/habit/goal records
// into derived views: a single bounded daily productivity score, a rolling
// weekly summary, and per-category task counts. Every function here is a
// pure computation over an immutable snapshot; the reference date is always
// injected by the caller.
package stats

import "studyflow/internal/model"

// ScoreWeights is the weighting of the three score signals. The split is a
// product decision, so it lives in configuration rather than being
// hardcoded. Weights are expected to sum to 1.
type ScoreWeights struct {
	Task     float64 `yaml:"task" json:"task"`
	Pomodoro float64 `yaml:"pomodoro" json:"pomodoro"`
	Sleep    float64 `yaml:"sleep" json:"sleep"`

	// TargetSessions is the pomodoro count at which the focus signal
	// saturates.
	TargetSessions int `yaml:"target_sessions" json:"target_sessions"`
}

// DefaultScoreWeights returns the stock weighting.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Task:           0.5,
		Pomodoro:       0.3,
		Sleep:          0.2,
		TargetSessions: 4,
	}
}

// Score combines the day's task completion ratio, a pomodoro signal that
// saturates at TargetSessions, and a sleep-quality signal in [0,1] into a
// single score in [0,1].
//
// The function is total: zero totals and zero targets contribute 0 to
// their term instead of dividing by zero, and the result is clamped.
func Score(completedToday, totalToday, pomodorosToday int, sleepQuality01 float64, w ScoreWeights) float64 {
	var taskSignal float64
	if totalToday > 0 {
		taskSignal = float64(completedToday) / float64(totalToday)
	}

	var pomodoroSignal float64
	if w.TargetSessions > 0 {
		pomodoroSignal = float64(pomodorosToday) / float64(w.TargetSessions)
		if pomodoroSignal > 1 {
			pomodoroSignal = 1
		}
	}

	score := w.Task*taskSignal + w.Pomodoro*pomodoroSignal + w.Sleep*sleepQuality01
	return clamp01(score)
}

// SleepQualitySignal maps the ordinal quality scale onto [0,1]. Unknown or
// missing quality (no data) maps to 0.
func SleepQualitySignal(q model.SleepQuality) float64 {
	switch q {
	case model.SleepPoor:
		return 0.25
	case model.SleepFair:
		return 0.5
	case model.SleepGood:
		return 0.75
	case model.SleepExcellent:
		return 1.0
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
