package models

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestUserAnalytics_ApplyFirstSession(t *testing.T) {
	a := NewUserAnalytics("u1")
	a.Apply(SessionSample{Duration: 90, Confidence: 0.8, Pace: 150, Clarity: 0.7, FillerRate: 2}, baseTime)

	assert.Equal(t, 1, a.TotalRecordings)
	assert.Equal(t, 90.0, a.TotalPracticeTime)
	assert.Equal(t, 0.8, a.AverageConfidence)
	assert.Equal(t, 150.0, a.AveragePace)
	assert.Equal(t, 0.7, a.AverageClarity)
	assert.Equal(t, 2.0, a.AverageFillers)
	assert.Equal(t, 1, a.CurrentStreak)
	assert.Equal(t, 1, a.LongestStreak)
	assert.Equal(t, 0.0, a.ConfidenceChange)
	assert.Equal(t, baseTime, a.LastPracticeDate)
}

func TestUserAnalytics_ApplyComputesDeltas(t *testing.T) {
	a := NewUserAnalytics("u1")
	a.Apply(SessionSample{Duration: 60, Confidence: 0.6, Pace: 120, Clarity: 0.5, FillerRate: 4}, baseTime)
	a.Apply(SessionSample{Duration: 30, Confidence: 0.8, Pace: 160, Clarity: 0.7, FillerRate: 2}, baseTime.Add(time.Hour))

	assert.Equal(t, 2, a.TotalRecordings)
	assert.Equal(t, 90.0, a.TotalPracticeTime)
	assert.InDelta(t, 0.7, a.AverageConfidence, 1e-12)
	assert.InDelta(t, 0.1, a.ConfidenceChange, 1e-12)
	assert.InDelta(t, 20.0, a.PaceChange, 1e-12)
	assert.InDelta(t, 0.1, a.ClarityChange, 1e-12)
	assert.InDelta(t, -1.0, a.FillerChange, 1e-12)
}

func TestUserAnalytics_AveragesMatchArithmeticMean(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := NewUserAnalytics("u1")

	const n = 5000
	var sumConf, sumPace, sumClarity, sumFill float64
	now := baseTime
	for i := 0; i < n; i++ {
		s := SessionSample{
			Duration:   rng.Float64() * 300,
			Confidence: rng.Float64(),
			Pace:       80 + rng.Float64()*140,
			Clarity:    rng.Float64(),
			FillerRate: rng.Float64() * 8,
		}
		sumConf += s.Confidence
		sumPace += s.Pace
		sumClarity += s.Clarity
		sumFill += s.FillerRate
		now = now.Add(time.Hour)
		a.Apply(s, now)
	}

	require.Equal(t, n, a.TotalRecordings)
	assert.InDelta(t, sumConf/n, a.AverageConfidence, 1e-9)
	assert.InDelta(t, sumPace/n, a.AveragePace, 1e-9)
	assert.InDelta(t, sumClarity/n, a.AverageClarity, 1e-9)
	assert.InDelta(t, sumFill/n, a.AverageFillers, 1e-9)
}

func TestUserAnalytics_StreakWindow(t *testing.T) {
	tests := []struct {
		name   string
		gap    time.Duration
		streak int
	}{
		{"same day", 2 * time.Hour, 2},
		{"next day", 24 * time.Hour, 2},
		{"exactly two days", 48 * time.Hour, 2},
		{"just over two days", 48*time.Hour + time.Second, 1},
		{"a week later", 7 * 24 * time.Hour, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewUserAnalytics("u1")
			a.Apply(SessionSample{Confidence: 0.5}, baseTime)
			a.Apply(SessionSample{Confidence: 0.5}, baseTime.Add(tt.gap))
			assert.Equal(t, tt.streak, a.CurrentStreak)
		})
	}
}

func TestUserAnalytics_LongestStreakSurvivesReset(t *testing.T) {
	a := NewUserAnalytics("u1")
	now := baseTime
	for i := 0; i < 4; i++ {
		a.Apply(SessionSample{Confidence: 0.5}, now)
		now = now.Add(24 * time.Hour)
	}
	require.Equal(t, 4, a.CurrentStreak)

	a.Apply(SessionSample{Confidence: 0.5}, now.Add(10*24*time.Hour))
	assert.Equal(t, 1, a.CurrentStreak)
	assert.Equal(t, 4, a.LongestStreak)
}

func TestRecording_FillerRate(t *testing.T) {
	r := &Recording{Duration: 120, FillerWordCount: 6}
	assert.Equal(t, 3.0, r.FillerRate())

	r.Duration = 0
	assert.Equal(t, 0.0, r.FillerRate())
}

func TestStringList_ScanValue(t *testing.T) {
	v, err := StringList{"a", "b"}.Value()
	require.NoError(t, err)

	var l StringList
	require.NoError(t, l.Scan(v))
	assert.Equal(t, StringList{"a", "b"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)
}
