package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"nena/internal/models"
	"nena/internal/store"

	"github.com/RoaringBitmap/roaring/v2"
)

const secondsPerDay = 24 * 60 * 60

// ruleContext evaluates criteria for one user at one instant. History
// queries are cached for the lifetime of the context.
type ruleContext struct {
	ctx       context.Context
	store     store.RecordStore
	userID    string
	analytics *models.UserAnalytics
	now       time.Time

	since   map[time.Time][]*models.Recording
	monthly *int
}

func newRuleContext(ctx context.Context, rs store.RecordStore, a *models.UserAnalytics, now time.Time) *ruleContext {
	return &ruleContext{
		ctx:       ctx,
		store:     rs,
		userID:    a.UserID,
		analytics: a,
		now:       now.UTC(),
		since:     make(map[time.Time][]*models.Recording),
	}
}

func (rc *ruleContext) recordingsSince(from time.Time) ([]*models.Recording, error) {
	if recs, ok := rc.since[from]; ok {
		return recs, nil
	}
	recs, err := rc.store.RecordingsBetween(rc.ctx, rc.userID, from, time.Time{})
	if err != nil {
		return nil, err
	}
	rc.since[from] = recs
	return recs, nil
}

func (rc *ruleContext) sessionsThisMonth() (int, error) {
	if rc.monthly != nil {
		return *rc.monthly, nil
	}
	start := time.Date(rc.now.Year(), rc.now.Month(), 1, 0, 0, 0, 0, time.UTC)
	n, err := rc.store.CountRecordingsSince(rc.ctx, rc.userID, start)
	if err != nil {
		return 0, err
	}
	rc.monthly = &n
	return n, nil
}

func (rc *ruleContext) distinctDays(window int) (uint64, error) {
	recs, err := rc.recordingsSince(rc.now.AddDate(0, 0, -window))
	if err != nil {
		return 0, err
	}
	days := roaring.New()
	for _, r := range recs {
		days.Add(uint32(r.CreatedAt.Unix() / secondsPerDay))
	}
	return days.GetCardinality(), nil
}

func (rc *ruleContext) practicedOn(day time.Weekday) (bool, error) {
	recs, err := rc.recordingsSince(rc.now.AddDate(0, -1, 0))
	if err != nil {
		return false, err
	}
	for _, r := range recs {
		if r.CreatedAt.UTC().Weekday() == day {
			return true, nil
		}
	}
	return false, nil
}

// check reports whether c holds and how far along the user is, as a ratio
// in [0,1]. Boolean criteria only ever report 0 or 1.
func (rc *ruleContext) check(c models.Criterion) (bool, float64, error) {
	a := rc.analytics
	switch v := c.(type) {
	case models.RecordingsAtLeast:
		return a.TotalRecordings >= v.Count, ratio(float64(a.TotalRecordings), float64(v.Count)), nil
	case models.StreakAtLeast:
		return a.CurrentStreak >= v.Days, ratio(float64(a.CurrentStreak), float64(v.Days)), nil
	case models.AverageConfidenceAtLeast:
		return a.AverageConfidence >= v.Min, ratio(a.AverageConfidence, v.Min), nil
	case models.TotalMinutesAtLeast:
		return a.TotalPracticeTime >= v.Minutes*60, ratio(a.TotalPracticeTime/60, v.Minutes), nil
	case models.PaceInRange:
		if a.AveragePace >= v.Min && a.AveragePace <= v.Max {
			return true, 1, nil
		}
		distance := math.Max(v.Min-a.AveragePace, a.AveragePace-v.Max)
		return false, clampRatio(1 - distance/(v.Max-v.Min)), nil
	case models.FillerRateAtMost:
		if a.AverageFillers <= v.Max {
			return true, 1, nil
		}
		return false, clampRatio(1 - (a.AverageFillers-v.Max)/v.Max), nil
	case models.ImprovementRateAtLeast:
		return a.ConfidenceChange >= v.Rate, ratio(a.ConfidenceChange, v.Rate), nil
	case models.DistinctPracticeDays:
		n, err := rc.distinctDays(v.Days)
		if err != nil {
			return false, 0, err
		}
		return n >= uint64(v.Days), ratio(float64(n), float64(v.Days)), nil
	case models.PracticedOnWeekday:
		ok, err := rc.practicedOn(v.Weekday)
		return ok, boolRatio(ok), err
	case models.MonthlySessions:
		n, err := rc.sessionsThisMonth()
		if err != nil {
			return false, 0, err
		}
		return n >= v.Goal, boolRatio(n >= v.Goal), nil
	default:
		return false, 0, fmt.Errorf("unknown criterion %T", c)
	}
}

// unlocked reports whether every criterion holds, stopping at the first miss.
func (rc *ruleContext) unlocked(criteria models.Criteria) (bool, error) {
	if len(criteria) == 0 {
		return false, nil
	}
	for _, c := range criteria {
		ok, _, err := rc.check(c)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// progress is the mean completion over all criteria, as a percentage.
func (rc *ruleContext) progress(criteria models.Criteria) (int, error) {
	if len(criteria) == 0 {
		return 0, nil
	}
	var sum float64
	for _, c := range criteria {
		_, r, err := rc.check(c)
		if err != nil {
			return 0, err
		}
		sum += r
	}
	return int(math.Round(sum / float64(len(criteria)) * 100)), nil
}

func ratio(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return clampRatio(current / target)
}

func clampRatio(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func boolRatio(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
