// Package store persists recordings, per-user analytics, the badge catalog,
// unlocked badges and the latest coaching insight.
package store

import (
	"context"
	"time"

	"nena/internal/models"
)

// AnalyticsMutator updates a user's analytics in place. A nil error commits
// the mutation together with any recording passed alongside it.
type AnalyticsMutator func(a *models.UserAnalytics) error

type RecordStore interface {
	InsertRecording(ctx context.Context, rec *models.Recording) error
	GetRecording(ctx context.Context, id string) (*models.Recording, error)
	// RecentRecordings returns up to limit recordings, newest first.
	RecentRecordings(ctx context.Context, userID string, limit int) ([]*models.Recording, error)
	// RecordingsBetween returns recordings in [from, to) oldest first. A zero
	// to leaves the range open ended.
	RecordingsBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.Recording, error)
	CountRecordingsSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListUserIDs(ctx context.Context) ([]string, error)

	GetAnalytics(ctx context.Context, userID string) (*models.UserAnalytics, error)
	// UpdateAnalytics loads (or initializes) the user's analytics, applies fn
	// and stores the result and rec in one atomic step. rec may be nil.
	UpdateAnalytics(ctx context.Context, userID string, rec *models.Recording, fn AnalyticsMutator) (*models.UserAnalytics, error)
	ReplaceAnalytics(ctx context.Context, a *models.UserAnalytics) error

	// UpsertBadge inserts b or refreshes the catalog entry with the same name.
	UpsertBadge(ctx context.Context, b *models.Badge) (*models.Badge, error)
	CreateBadge(ctx context.Context, b *models.Badge) error
	// ListActiveBadges returns active badges in catalog order.
	ListActiveBadges(ctx context.Context) ([]*models.Badge, error)
	InsertUserBadge(ctx context.Context, ub *models.UserBadge) error
	ListUserBadges(ctx context.Context, userID string) ([]*models.UserBadge, error)

	SaveCoachingInsight(ctx context.Context, ins *models.CoachingInsight) error
	LatestCoachingInsight(ctx context.Context, userID string) (*models.CoachingInsight, error)

	Close() error
}

// Snapshotter is implemented by stores whose state lives in process memory
// and must be written to disk to survive restarts.
type Snapshotter interface {
	Snapshot() *models.Snapshot
	Restore(s *models.Snapshot)
}
