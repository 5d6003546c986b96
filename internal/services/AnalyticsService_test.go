package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"nena/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSession_FirstSessionInitializes(t *testing.T) {
	h := newHarness(t)

	a, err := h.analytics.RecordSession(context.Background(), "u1", models.SessionSample{
		Duration: 90, Confidence: 0.8, Pace: 140, Clarity: 0.7, FillerRate: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, a.TotalRecordings)
	assert.Equal(t, 90.0, a.TotalPracticeTime)
	assert.Equal(t, 0.8, a.AverageConfidence)
	assert.Equal(t, 140.0, a.AveragePace)
	assert.Equal(t, 1, a.CurrentStreak)
	assert.Equal(t, 1, a.LongestStreak)
	assert.Equal(t, baseTime, a.LastPracticeDate)
}

func TestRecordSession_RequiresUser(t *testing.T) {
	h := newHarness(t)
	_, err := h.analytics.RecordSession(context.Background(), "", models.SessionSample{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestRecordSession_AveragesMatchArithmeticMean(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const n = 500
	var sumConf, sumPace, sumClarity, sumFiller float64
	for i := 0; i < n; i++ {
		s := models.SessionSample{
			Duration:   30 + float64(i%7),
			Confidence: 0.5 + float64(i%37)/100,
			Pace:       110 + float64((i*13)%90),
			Clarity:    0.4 + float64((i*7)%53)/100,
			FillerRate: float64((i*3)%11) / 2,
		}
		sumConf += s.Confidence
		sumPace += s.Pace
		sumClarity += s.Clarity
		sumFiller += s.FillerRate
		_, err := h.analytics.RecordSession(ctx, "u1", s)
		require.NoError(t, err)
		h.clock.Advance(time.Hour)
	}

	a, err := h.analytics.GetUserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, n, a.TotalRecordings)
	assert.InDelta(t, sumConf/n, a.AverageConfidence, 1e-9)
	assert.InDelta(t, sumPace/n, a.AveragePace, 1e-9)
	assert.InDelta(t, sumClarity/n, a.AverageClarity, 1e-9)
	assert.InDelta(t, sumFiller/n, a.AverageFillers, 1e-9)
}

func TestRecordSession_DeltasTrackAverageChange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.analytics.RecordSession(ctx, "u1", models.SessionSample{Confidence: 0.6, Pace: 120})
	require.NoError(t, err)
	a, err := h.analytics.RecordSession(ctx, "u1", models.SessionSample{Confidence: 0.8, Pace: 160})
	require.NoError(t, err)

	assert.InDelta(t, 0.7, a.AverageConfidence, 1e-12)
	assert.InDelta(t, 0.1, a.ConfidenceChange, 1e-12)
	assert.InDelta(t, 20, a.PaceChange, 1e-12)
}

func TestRecordSession_Streak(t *testing.T) {
	tests := []struct {
		name   string
		gap    time.Duration
		streak int
	}{
		{"same day", time.Hour, 2},
		{"next evening", 47 * time.Hour, 2},
		{"exactly two days", 48 * time.Hour, 2},
		{"just over two days", 48*time.Hour + time.Minute, 1},
		{"a week later", 7 * 24 * time.Hour, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()

			_, err := h.analytics.RecordSession(ctx, "u1", models.SessionSample{})
			require.NoError(t, err)
			h.clock.Advance(tt.gap)
			a, err := h.analytics.RecordSession(ctx, "u1", models.SessionSample{})
			require.NoError(t, err)

			assert.Equal(t, tt.streak, a.CurrentStreak)
			assert.Equal(t, 2, a.TotalRecordings)
		})
	}
}

func TestRecordSession_LongestStreakSurvivesReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := h.analytics.RecordSession(ctx, "u1", models.SessionSample{})
		require.NoError(t, err)
		h.clock.Advance(24 * time.Hour)
	}
	h.clock.Advance(5 * 24 * time.Hour)
	a, err := h.analytics.RecordSession(ctx, "u1", models.SessionSample{})
	require.NoError(t, err)

	assert.Equal(t, 1, a.CurrentStreak)
	assert.Equal(t, 4, a.LongestStreak)
}

func TestRecordSession_ConcurrentWritersDoNotLoseUpdates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const writers = 64
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.analytics.RecordSession(ctx, "u1", models.SessionSample{Duration: 10, Confidence: float64(i%2) * 0.5})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	a, err := h.analytics.GetUserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, writers, a.TotalRecordings)
	assert.InDelta(t, 640.0, a.TotalPracticeTime, 1e-9)
	assert.InDelta(t, 0.25, a.AverageConfidence, 1e-9)
}

func TestSaveRecording_StoresRecordingAndStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	rec := &models.Recording{UserID: "u1", Duration: 120, Confidence: 0.9, SpeakingPace: 150, FillerWordCount: 4}
	a, err := h.analytics.SaveRecording(ctx, rec)
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, baseTime, rec.CreatedAt)
	assert.Equal(t, 1, a.TotalRecordings)
	assert.InDelta(t, 2.0, a.AverageFillers, 1e-9)

	got, err := h.store.GetRecording(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
}

func TestSaveRecording_FailedWriteLeavesStatsUntouched(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first := &models.Recording{ID: "r1", UserID: "u1", Duration: 60, Confidence: 0.5}
	_, err := h.analytics.SaveRecording(ctx, first)
	require.NoError(t, err)

	dup := &models.Recording{ID: "r1", UserID: "u1", Duration: 60, Confidence: 1}
	_, err = h.analytics.SaveRecording(ctx, dup)
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	a, err := h.analytics.GetUserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, a.TotalRecordings)
	assert.Equal(t, 0.5, a.AverageConfidence)
}

func TestSaveRecording_StoreErrorIsTyped(t *testing.T) {
	h := newHarness(t)
	fs := &failingStore{RecordStore: h.store, err: models.NewStoreError("update", errors.New("db down")), fail: map[string]bool{"UpdateAnalytics": true}}
	svc := NewAnalyticsService(fs, NewUserLocks(), h.logger)

	_, err := svc.SaveRecording(context.Background(), &models.Recording{UserID: "u1"})
	assert.True(t, models.IsStoreError(err))
}

func TestSaveRecording_RequiresUser(t *testing.T) {
	h := newHarness(t)
	_, err := h.analytics.SaveRecording(context.Background(), &models.Recording{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestGetUserStats_UnknownUser(t *testing.T) {
	h := newHarness(t)
	a, err := h.analytics.GetUserStats(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestRecentRecordings_NewestFirstWithScore(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, c := range []float64{0.5, 0.666, 0.914} {
		h.addRecording(t, "u1", sessionOpts{confidence: c})
		h.clock.Advance(time.Hour)
	}

	out, err := h.analytics.RecentRecordings(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 91, out[0].Score)
	assert.Equal(t, 67, out[1].Score)
	assert.True(t, out[0].CreatedAt.After(out[1].CreatedAt))

	empty, err := h.analytics.RecentRecordings(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProgressSeries_GroupsByMonth(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.clock.Set(time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC))
	h.addRecording(t, "u1", sessionOpts{confidence: 0.1})
	h.clock.Set(time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC))
	h.addRecording(t, "u1", sessionOpts{confidence: 0.6})
	h.clock.Set(time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC))
	h.addRecording(t, "u1", sessionOpts{confidence: 0.8})
	h.clock.Set(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	h.addRecording(t, "u1", sessionOpts{confidence: 0.9})

	h.clock.Set(baseTime)
	out, err := h.analytics.ProgressSeries(ctx, "u1", 7)
	require.NoError(t, err)

	assert.Equal(t, []models.ProgressPoint{
		{Name: "Dec", Score: 70, Month: 11, Year: 2024},
		{Name: "Feb", Score: 90, Month: 1, Year: 2025},
	}, out)
}

func TestReconcile_RebuildsFromRecordings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	confs := []float64{0.6, 0.7, 0.95}
	for _, c := range confs {
		h.addRecording(t, "u1", sessionOpts{confidence: c, pace: 150, duration: 60})
		h.clock.Advance(24 * time.Hour)
	}
	want, err := h.analytics.GetUserStats(ctx, "u1")
	require.NoError(t, err)

	drifted := want.Clone()
	drifted.AverageConfidence += 0.01
	drifted.TotalRecordings = 99
	require.NoError(t, h.store.ReplaceAnalytics(ctx, drifted))

	got, err := h.analytics.Reconcile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalRecordings)
	assert.InDelta(t, (0.6+0.7+0.95)/3, got.AverageConfidence, 1e-9)
	assert.Equal(t, want.CurrentStreak, got.CurrentStreak)
	assert.Equal(t, want.LastPracticeDate, got.LastPracticeDate)

	stored, err := h.analytics.GetUserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.TotalRecordings)
}

func TestReconcile_NoRecordingsIsNoop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.analytics.RecordSession(ctx, "u1", models.SessionSample{Confidence: 0.4})
	require.NoError(t, err)

	got, err := h.analytics.Reconcile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	a, err := h.analytics.GetUserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, a.TotalRecordings)
}

func TestReconcileAll(t *testing.T) {
	h := newHarness(t)
	h.addRecording(t, "u1", sessionOpts{confidence: 0.5})
	h.addRecording(t, "u2", sessionOpts{confidence: 0.7})

	n, err := h.analytics.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReconcileAll_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	h.addRecording(t, "u1", sessionOpts{confidence: 0.5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.analytics.ReconcileAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUserLocks_SerializesAndCleansUp(t *testing.T) {
	locks := NewUserLocks()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("u1")
			mu.Lock()
			inside++
			maxSeen = int(math.Max(float64(maxSeen), float64(inside)))
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locks.size())
}
