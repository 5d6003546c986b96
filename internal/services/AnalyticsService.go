package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"nena/internal/models"
	"nena/internal/providers"
	"nena/internal/store"

	"github.com/google/uuid"
)

type AnalyticsServiceInterface interface {
	// RecordSession folds one session into the user's running statistics.
	RecordSession(ctx context.Context, userID string, sample models.SessionSample) (*models.UserAnalytics, error)
	// SaveRecording stores rec and folds it into the statistics atomically.
	SaveRecording(ctx context.Context, rec *models.Recording) (*models.UserAnalytics, error)
	GetUserStats(ctx context.Context, userID string) (*models.UserAnalytics, error)
	RecentRecordings(ctx context.Context, userID string, limit int) ([]models.RecentRecording, error)
	ProgressSeries(ctx context.Context, userID string, months int) ([]models.ProgressPoint, error)
	Reconcile(ctx context.Context, userID string) (*models.UserAnalytics, error)
	ReconcileAll(ctx context.Context) (int, error)
}

type AnalyticsService struct {
	store  store.RecordStore
	locks  *UserLocks
	logger providers.Logger
	now    func() time.Time
}

func (s *AnalyticsService) RecordSession(ctx context.Context, userID string, sample models.SessionSample) (*models.UserAnalytics, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", models.ErrInvalidInput)
	}
	defer s.locks.Lock(userID)()

	now := s.now()
	a, err := s.store.UpdateAnalytics(ctx, userID, nil, func(a *models.UserAnalytics) error {
		a.Apply(sample, now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	return a, nil
}

func (s *AnalyticsService) SaveRecording(ctx context.Context, rec *models.Recording) (*models.UserAnalytics, error) {
	if rec == nil || rec.UserID == "" {
		return nil, fmt.Errorf("%w: recording without user", models.ErrInvalidInput)
	}
	defer s.locks.Lock(rec.UserID)()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	a, err := s.store.UpdateAnalytics(ctx, rec.UserID, rec, func(a *models.UserAnalytics) error {
		a.Apply(rec.Sample(), rec.CreatedAt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save recording %s: %w", rec.ID, err)
	}
	return a, nil
}

// GetUserStats returns nil without error for users that never practiced.
func (s *AnalyticsService) GetUserStats(ctx context.Context, userID string) (*models.UserAnalytics, error) {
	a, err := s.store.GetAnalytics(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return a, nil
}

func (s *AnalyticsService) RecentRecordings(ctx context.Context, userID string, limit int) ([]models.RecentRecording, error) {
	out := []models.RecentRecording{}
	if limit <= 0 {
		return out, nil
	}
	recs, err := s.store.RecentRecordings(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent recordings: %w", err)
	}
	for _, r := range recs {
		out = append(out, models.RecentRecording{
			ID:             r.ID,
			CreatedAt:      r.CreatedAt,
			Duration:       r.Duration,
			Confidence:     r.Confidence,
			PrimaryInsight: r.PrimaryInsight,
			Score:          score(r.Confidence),
		})
	}
	return out, nil
}

type monthBucket struct {
	year  int
	month time.Month
	total float64
	count int
}

// ProgressSeries averages confidence per calendar month (UTC) over the last
// months months, oldest first.
func (s *AnalyticsService) ProgressSeries(ctx context.Context, userID string, months int) ([]models.ProgressPoint, error) {
	out := []models.ProgressPoint{}
	if months <= 0 {
		return out, nil
	}
	from := s.now().UTC().AddDate(0, -months, 0)
	recs, err := s.store.RecordingsBetween(ctx, userID, from, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("progress series: %w", err)
	}

	buckets := make(map[int]*monthBucket)
	for _, r := range recs {
		t := r.CreatedAt.UTC()
		key := t.Year()*12 + int(t.Month()) - 1
		b, ok := buckets[key]
		if !ok {
			b = &monthBucket{year: t.Year(), month: t.Month()}
			buckets[key] = b
		}
		b.total += r.Confidence
		b.count++
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		b := buckets[k]
		out = append(out, models.ProgressPoint{
			Name:  b.month.String()[:3],
			Score: score(b.total / float64(b.count)),
			Month: int(b.month) - 1,
			Year:  b.year,
		})
	}
	return out, nil
}

// Reconcile rebuilds the user's statistics by replaying every stored
// recording in creation order. Users without recordings are left untouched.
func (s *AnalyticsService) Reconcile(ctx context.Context, userID string) (*models.UserAnalytics, error) {
	defer s.locks.Lock(userID)()

	recs, err := s.store.RecordingsBetween(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", userID, err)
	}
	if len(recs) == 0 {
		return nil, nil
	}

	a := models.NewUserAnalytics(userID)
	for _, r := range recs {
		a.Apply(r.Sample(), r.CreatedAt)
	}
	if err := s.store.ReplaceAnalytics(ctx, a); err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", userID, err)
	}
	return a, nil
}

func (s *AnalyticsService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return len(ids), err
		}
		if _, err := s.Reconcile(ctx, id); err != nil {
			s.logger.Errorf(providers.TypeWorker, "Reconcile failed for user %s: %v", id, err)
			errs = append(errs, err)
		}
	}
	return len(ids), errors.Join(errs...)
}

func score(confidence float64) int {
	return int(math.Round(confidence * 100))
}

func NewAnalyticsService(rs store.RecordStore, locks *UserLocks, logger providers.Logger) AnalyticsServiceInterface {
	return &AnalyticsService{
		store:  rs,
		locks:  locks,
		logger: logger,
		now:    time.Now,
	}
}
