package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"nena/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ideasReply = `[{"title": "Elevator Pitch", "description": "Sell it", "duration": 5, "category": "presentation", "instructions": ["a"], "tips": ["b"]}]`

func newTestDashboard(h *harness) DashboardServiceInterface {
	return NewDashboardService(testConfig(), h.analytics, h.badges, h.coach)
}

func TestDashboard_NewUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.badges.SeedDefaults(ctx)
	require.NoError(t, err)

	d, err := newTestDashboard(h).Dashboard(ctx, "nobody")
	require.NoError(t, err)

	assert.Nil(t, d.Stats)
	assert.Empty(t, d.RecentRecordings)
	assert.Empty(t, d.Progress)
	require.Len(t, d.Badges, 20)
	for _, b := range d.Badges {
		assert.False(t, b.IsUnlocked)
		assert.Zero(t, b.Progress)
	}
	require.NotNil(t, d.Coaching)
	assert.Equal(t, models.SourceOnboarding, d.Coaching.Source)
	assert.Len(t, d.PracticeIdeas, 3)
}

func TestDashboard_ActiveUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.generator.Fn = func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "JSON") {
			return ideasReply, nil
		}
		return coachReply, nil
	}
	for i := 0; i < 3; i++ {
		h.addRecording(t, "u1", sessionOpts{confidence: 0.85, pace: 150, clarity: 0.8})
		h.clock.Advance(24 * time.Hour)
	}

	d, err := newTestDashboard(h).Dashboard(ctx, "u1")
	require.NoError(t, err)

	require.NotNil(t, d.Stats)
	assert.Equal(t, 3, d.Stats.TotalRecordings)
	assert.Equal(t, 3, d.Stats.CurrentStreak)
	assert.Len(t, d.RecentRecordings, 3)
	assert.Equal(t, 85, d.RecentRecordings[0].Score)
	require.Len(t, d.Progress, 1)
	assert.Equal(t, "Mar", d.Progress[0].Name)
	assert.Equal(t, models.SourceGenerated, d.Coaching.Source)
	require.Len(t, d.PracticeIdeas, 1)
	assert.Equal(t, "Elevator Pitch", d.PracticeIdeas[0].Title)

	// The composed insight is stored for the next read.
	ins, err := h.store.LatestCoachingInsight(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, d.Coaching.WhatWorking, ins.WhatWorking)
}

func TestDashboard_StoreFailure(t *testing.T) {
	h := newHarness(t)
	fs := &failingStore{RecordStore: h.store, err: models.NewStoreError("recent", assert.AnError), fail: map[string]bool{"RecentRecordings": true}}
	analytics := NewAnalyticsService(fs, NewUserLocks(), h.logger)
	badges := NewBadgeService(fs, h.logger, h.metrics)
	coach := NewCoachService(testConfig(), fs, h.generator, h.logger, h.metrics)

	_, err := NewDashboardService(testConfig(), analytics, badges, coach).Dashboard(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, models.IsStoreError(err))
}
