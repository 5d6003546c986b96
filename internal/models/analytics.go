package models

import "time"

// StreakWindow is how far apart two sessions may be and still extend a streak.
const StreakWindow = 48 * time.Hour

// SessionSample holds the per-session values folded into UserAnalytics.
type SessionSample struct {
	Duration   float64
	Confidence float64
	Pace       float64
	Clarity    float64
	FillerRate float64
}

type UserAnalytics struct {
	UserID            string    `json:"userId" gorm:"primaryKey;size:128"`
	TotalRecordings   int       `json:"totalRecordings"`
	TotalPracticeTime float64   `json:"totalPracticeTime"`
	AverageConfidence float64   `json:"averageConfidence"`
	AveragePace       float64   `json:"averagePace"`
	AverageClarity    float64   `json:"averageClarity"`
	AverageFillers    float64   `json:"averageFillers"`
	CurrentStreak     int       `json:"currentStreak"`
	LongestStreak     int       `json:"longestStreak"`
	LastPracticeDate  time.Time `json:"lastPracticeDate"`
	ConfidenceChange  float64   `json:"confidenceChange"`
	PaceChange        float64   `json:"paceChange"`
	ClarityChange     float64   `json:"clarityChange"`
	FillerChange      float64   `json:"fillerChange"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func NewUserAnalytics(userID string) *UserAnalytics {
	return &UserAnalytics{UserID: userID}
}

// Apply folds one session into the running aggregates as of now.
func (a *UserAnalytics) Apply(s SessionSample, now time.Time) {
	if a.TotalRecordings <= 0 {
		a.TotalRecordings = 1
		a.TotalPracticeTime = s.Duration
		a.AverageConfidence = s.Confidence
		a.AveragePace = s.Pace
		a.AverageClarity = s.Clarity
		a.AverageFillers = s.FillerRate
		a.CurrentStreak = 1
		a.LongestStreak = max(a.LongestStreak, 1)
		a.ConfidenceChange, a.PaceChange, a.ClarityChange, a.FillerChange = 0, 0, 0, 0
		a.LastPracticeDate = now
		a.UpdatedAt = now
		return
	}

	n := float64(a.TotalRecordings)
	confidence := incrementalMean(a.AverageConfidence, n, s.Confidence)
	pace := incrementalMean(a.AveragePace, n, s.Pace)
	clarity := incrementalMean(a.AverageClarity, n, s.Clarity)
	fillers := incrementalMean(a.AverageFillers, n, s.FillerRate)

	a.ConfidenceChange = confidence - a.AverageConfidence
	a.PaceChange = pace - a.AveragePace
	a.ClarityChange = clarity - a.AverageClarity
	a.FillerChange = fillers - a.AverageFillers

	a.AverageConfidence = confidence
	a.AveragePace = pace
	a.AverageClarity = clarity
	a.AverageFillers = fillers
	a.TotalRecordings++
	a.TotalPracticeTime += s.Duration

	if a.withinStreak(now) {
		a.CurrentStreak++
	} else {
		a.CurrentStreak = 1
	}
	a.LongestStreak = max(a.LongestStreak, a.CurrentStreak)
	a.LastPracticeDate = now
	a.UpdatedAt = now
}

func (a *UserAnalytics) withinStreak(now time.Time) bool {
	if a.LastPracticeDate.IsZero() {
		return false
	}
	gap := now.Sub(a.LastPracticeDate)
	if gap < 0 {
		gap = -gap
	}
	return gap <= StreakWindow
}

func incrementalMean(old, n, value float64) float64 {
	return (old*n + value) / (n + 1)
}

func (a *UserAnalytics) Clone() *UserAnalytics {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
