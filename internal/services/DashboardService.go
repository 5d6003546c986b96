package services

import (
	"context"

	"nena/internal/models"
	"nena/internal/structures"

	"golang.org/x/sync/errgroup"
)

type DashboardServiceInterface interface {
	Dashboard(ctx context.Context, userID string) (*models.Dashboard, error)
}

// DashboardService assembles the read side for one user. The parts are
// independent and fetched concurrently.
type DashboardService struct {
	analytics      AnalyticsServiceInterface
	badges         BadgeServiceInterface
	coach          CoachServiceInterface
	recentSessions int
	progressMonths int
	practiceIdeas  int
}

func (s *DashboardService) Dashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	d := &models.Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Stats, err = s.analytics.GetUserStats(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.RecentRecordings, err = s.analytics.RecentRecordings(ctx, userID, s.recentSessions)
		return err
	})
	g.Go(func() (err error) {
		d.Progress, err = s.analytics.ProgressSeries(ctx, userID, s.progressMonths)
		return err
	})
	g.Go(func() (err error) {
		d.Badges, err = s.badges.Progress(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Coaching, err = s.coach.LatestInsight(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.PracticeIdeas, err = s.coach.PracticeIdeas(ctx, userID, s.practiceIdeas)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func NewDashboardService(conf *structures.Config, analytics AnalyticsServiceInterface, badges BadgeServiceInterface, coach CoachServiceInterface) DashboardServiceInterface {
	return &DashboardService{
		analytics:      analytics,
		badges:         badges,
		coach:          coach,
		recentSessions: conf.Coaching.RecentSessions,
		progressMonths: conf.Coaching.ProgressMonths,
		practiceIdeas:  conf.Coaching.PracticeIdeas,
	}
}
