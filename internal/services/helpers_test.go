package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"nena/internal/generation/mock"
	"nena/internal/models"
	"nena/internal/store"
	"nena/internal/structures"
	"nena/internal/testutil"
)

// Monday, 3 March 2025.
var baseTime = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock { return &testClock{t: baseTime} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func testConfig() *structures.Config {
	return &structures.Config{
		Analysis: structures.AnalysisConfig{MaxUploadBytes: 1 << 20, InlineLimitBytes: 1 << 10},
		Coaching: structures.CoachingConfig{
			Workers:        2,
			QueueSize:      8,
			Timeout:        time.Second,
			HistorySize:    10,
			PracticeIdeas:  3,
			RecentSessions: 5,
			ProgressMonths: 7,
		},
	}
}

type harness struct {
	store     *store.MemoryStore
	clock     *testClock
	logger    *testutil.MockLogger
	metrics   *testutil.MockMetrics
	cache     *testutil.MockCache
	generator *mock.Generator
	analytics *AnalyticsService
	badges    *BadgeService
	coach     *CoachService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:     store.NewMemoryStore(),
		clock:     newTestClock(),
		logger:    &testutil.MockLogger{},
		metrics:   &testutil.MockMetrics{},
		cache:     testutil.NewMockCache(),
		generator: &mock.Generator{},
	}
	h.analytics = NewAnalyticsService(h.store, NewUserLocks(), h.logger).(*AnalyticsService)
	h.analytics.now = h.clock.Now
	h.badges = NewBadgeService(h.store, h.logger, h.metrics).(*BadgeService)
	h.badges.now = h.clock.Now
	h.coach = NewCoachService(testConfig(), h.store, h.generator, h.logger, h.metrics).(*CoachService)
	h.coach.now = h.clock.Now
	return h
}

type sessionOpts struct {
	confidence float64
	pace       float64
	clarity    float64
	duration   float64
	fillers    int
	weaknesses []string
	strengths  []string
}

// addRecording stores a recording at the clock's current time.
func (h *harness) addRecording(t *testing.T, userID string, o sessionOpts) *models.Recording {
	t.Helper()
	if o.duration == 0 {
		o.duration = 60
	}
	rec := &models.Recording{
		UserID:          userID,
		CreatedAt:       h.clock.Now(),
		Duration:        o.duration,
		Confidence:      o.confidence,
		SpeakingPace:    o.pace,
		ClarityScore:    o.clarity,
		FillerWordCount: o.fillers,
		Weaknesses:      o.weaknesses,
		Strengths:       o.strengths,
	}
	if _, err := h.analytics.SaveRecording(context.Background(), rec); err != nil {
		t.Fatalf("save recording: %v", err)
	}
	return rec
}

// timedTranscript spaces words evenly at wpm words per minute.
func timedTranscript(text string, wpm, confidence float64) *models.Transcript {
	step := 60 / wpm
	var words []models.Word
	for i, w := range strings.Fields(text) {
		start := float64(i) * step
		words = append(words, models.Word{Text: w, Start: start, End: start + step*0.8})
	}
	return &models.Transcript{Text: text, Words: words, Confidence: confidence}
}

// failingStore fails the methods named in fail with err.
type failingStore struct {
	store.RecordStore
	err  error
	fail map[string]bool
}

func (f *failingStore) RecentRecordings(ctx context.Context, userID string, limit int) ([]*models.Recording, error) {
	if f.fail["RecentRecordings"] {
		return nil, f.err
	}
	return f.RecordStore.RecentRecordings(ctx, userID, limit)
}

func (f *failingStore) UpdateAnalytics(ctx context.Context, userID string, rec *models.Recording, fn store.AnalyticsMutator) (*models.UserAnalytics, error) {
	if f.fail["UpdateAnalytics"] {
		return nil, f.err
	}
	return f.RecordStore.UpdateAnalytics(ctx, userID, rec, fn)
}

func (f *failingStore) ListUserBadges(ctx context.Context, userID string) ([]*models.UserBadge, error) {
	if f.fail["ListUserBadges"] {
		return nil, f.err
	}
	return f.RecordStore.ListUserBadges(ctx, userID)
}
