package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"nena/internal/models"
	"nena/internal/providers"
	"nena/internal/store"

	"github.com/google/uuid"
)

type BadgeServiceInterface interface {
	// SeedDefaults upserts the default catalog by name and returns its size.
	SeedDefaults(ctx context.Context) (int, error)
	CreateBadge(ctx context.Context, b *models.Badge) (*models.Badge, error)
	// Evaluate unlocks every badge the user newly qualifies for and returns
	// their names in catalog order.
	Evaluate(ctx context.Context, userID string) ([]string, error)
	// Progress lists every active badge with the user's completion. It never
	// writes.
	Progress(ctx context.Context, userID string) ([]models.BadgeProgress, error)
}

type BadgeService struct {
	store   store.RecordStore
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func (s *BadgeService) SeedDefaults(ctx context.Context) (int, error) {
	defaults := DefaultBadges()
	now := s.now().UTC()
	for _, b := range defaults {
		b.ID = uuid.NewString()
		b.CreatedAt = now
		if _, err := s.store.UpsertBadge(ctx, b); err != nil {
			return 0, fmt.Errorf("seed badge %q: %w", b.Name, err)
		}
	}
	s.logger.Infof(providers.TypeApp, "Badge catalog seeded with %d defaults", len(defaults))
	return len(defaults), nil
}

func (s *BadgeService) CreateBadge(ctx context.Context, b *models.Badge) (*models.Badge, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: empty badge", models.ErrInvalidInput)
	}
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return nil, fmt.Errorf("%w: badge name is required", models.ErrInvalidInput)
	}
	if !b.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown badge category %q", models.ErrInvalidInput, b.Category)
	}
	if err := b.Criteria.Validate(); err != nil {
		return nil, err
	}

	b.ID = uuid.NewString()
	b.IsActive = true
	b.CreatedAt = s.now().UTC()
	if err := s.store.CreateBadge(ctx, b); err != nil {
		return nil, fmt.Errorf("create badge %q: %w", b.Name, err)
	}
	return b, nil
}

func (s *BadgeService) load(ctx context.Context, userID string) (*models.UserAnalytics, map[string]*models.UserBadge, []*models.Badge, error) {
	a, err := s.store.GetAnalytics(ctx, userID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, nil, nil, fmt.Errorf("load analytics: %w", err)
	}
	owned, err := s.store.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load user badges: %w", err)
	}
	catalog, err := s.store.ListActiveBadges(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load badge catalog: %w", err)
	}

	unlocked := make(map[string]*models.UserBadge, len(owned))
	for _, ub := range owned {
		unlocked[ub.BadgeID] = ub
	}
	return a, unlocked, catalog, nil
}

func (s *BadgeService) Evaluate(ctx context.Context, userID string) ([]string, error) {
	newly := []string{}
	a, unlocked, catalog, err := s.load(ctx, userID)
	if err != nil {
		return newly, err
	}
	if a == nil {
		return newly, nil
	}

	now := s.now().UTC()
	rc := newRuleContext(ctx, s.store, a, now)
	for _, b := range catalog {
		if _, ok := unlocked[b.ID]; ok {
			continue
		}
		ok, err := rc.unlocked(b.Criteria)
		if err != nil {
			return newly, fmt.Errorf("evaluate badge %q: %w", b.Name, err)
		}
		if !ok {
			continue
		}

		err = s.store.InsertUserBadge(ctx, &models.UserBadge{
			ID:         uuid.NewString(),
			UserID:     userID,
			BadgeID:    b.ID,
			UnlockedAt: now,
		})
		if errors.Is(err, models.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return newly, fmt.Errorf("unlock badge %q: %w", b.Name, err)
		}

		newly = append(newly, b.Name)
		s.metrics.IncBadgeUnlocks(b.Name)
		s.logger.Infof(providers.TypeApp, "User %s unlocked badge %q", userID, b.Name)
	}
	return newly, nil
}

func (s *BadgeService) Progress(ctx context.Context, userID string) ([]models.BadgeProgress, error) {
	a, unlocked, catalog, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	var rc *ruleContext
	if a != nil {
		rc = newRuleContext(ctx, s.store, a, s.now())
	}

	out := make([]models.BadgeProgress, 0, len(catalog))
	for _, b := range catalog {
		ub, isUnlocked := unlocked[b.ID]
		p := models.BadgeProgress{
			Badge: models.BadgeView{
				ID:          b.ID,
				Name:        b.Name,
				Description: b.Description,
				Category:    b.Category,
				IconName:    b.IconName,
				Icon:        models.BadgeIcon(b.IconName, isUnlocked),
			},
			IsUnlocked:  isUnlocked,
			Requirement: b.Criteria.Requirement(),
		}
		switch {
		case isUnlocked:
			p.Progress = 100
			at := ub.UnlockedAt
			p.UnlockedAt = &at
		case rc != nil:
			if p.Progress, err = rc.progress(b.Criteria); err != nil {
				return nil, fmt.Errorf("badge progress %q: %w", b.Name, err)
			}
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Badge.Category != out[j].Badge.Category {
			return out[i].Badge.Category < out[j].Badge.Category
		}
		if out[i].IsUnlocked != out[j].IsUnlocked {
			return out[i].IsUnlocked
		}
		return out[i].Progress > out[j].Progress
	})
	return out, nil
}

func NewBadgeService(rs store.RecordStore, logger providers.Logger, metrics providers.MetricsProviderInterface) BadgeServiceInterface {
	return &BadgeService{
		store:   rs,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}
