package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"studyflow/internal/model"
)

func TestScore(t *testing.T) {
	w := DefaultScoreWeights() // task 0.5, pomodoro 0.3, sleep 0.2, target 4

	tests := []struct {
		name      string
		completed int
		total     int
		pomodoros int
		sleep     float64
		want      float64
	}{
		{
			// 0.5*(2/4) + 0.3*min(3/4,1) + 0.2*1.0 = 0.675
			name: "worked example", completed: 2, total: 4, pomodoros: 3, sleep: 1.0, want: 0.675,
		},
		{
			name: "no data at all", completed: 0, total: 0, pomodoros: 0, sleep: 0, want: 0,
		},
		{
			name: "pomodoro signal saturates", completed: 0, total: 0, pomodoros: 12, sleep: 0, want: 0.3,
		},
		{
			name: "perfect day", completed: 5, total: 5, pomodoros: 4, sleep: 1.0, want: 1.0,
		},
		{
			name: "sleep only", completed: 0, total: 0, pomodoros: 0, sleep: 0.5, want: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.completed, tt.total, tt.pomodoros, tt.sleep, w)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScoreDegenerateWeights(t *testing.T) {
	// A zero session target must zero the pomodoro term, not divide by zero.
	w := ScoreWeights{Task: 0.5, Pomodoro: 0.3, Sleep: 0.2, TargetSessions: 0}
	got := Score(1, 2, 10, 0, w)
	assert.InDelta(t, 0.25, got, 1e-9)
}

func TestScoreClamped(t *testing.T) {
	// Weights that sum past 1 still produce a bounded score.
	w := ScoreWeights{Task: 1, Pomodoro: 1, Sleep: 1, TargetSessions: 1}
	got := Score(3, 3, 5, 1.0, w)
	assert.Equal(t, 1.0, got)
}

func TestSleepQualitySignal(t *testing.T) {
	tests := []struct {
		quality model.SleepQuality
		want    float64
	}{
		{model.SleepPoor, 0.25},
		{model.SleepFair, 0.5},
		{model.SleepGood, 0.75},
		{model.SleepExcellent, 1.0},
		{model.SleepQuality(""), 0},
		{model.SleepQuality("terrible"), 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, SleepQualitySignal(tt.quality), 1e-9, "quality %q", tt.quality)
	}
}
