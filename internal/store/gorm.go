package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nena/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type GormStore struct {
	db *gorm.DB
}

func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
}

// NewGormStore migrates the schema on db and wraps it.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(
		&models.Recording{},
		&models.UserAnalytics{},
		&models.Badge{},
		&models.UserBadge{},
		&models.CoachingInsight{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) InsertRecording(ctx context.Context, rec *models.Recording) error {
	return translate("insert recording", s.db.WithContext(ctx).Create(rec).Error)
}

func (s *GormStore) GetRecording(ctx context.Context, id string) (*models.Recording, error) {
	var rec models.Recording
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate("get recording", err)
	}
	return &rec, nil
}

func (s *GormStore) RecentRecordings(ctx context.Context, userID string, limit int) ([]*models.Recording, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	out := make([]*models.Recording, 0)
	if err := q.Find(&out).Error; err != nil {
		return nil, translate("recent recordings", err)
	}
	return out, nil
}

func (s *GormStore) RecordingsBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.Recording, error) {
	q := s.db.WithContext(ctx).Where("user_id = ? AND created_at >= ?", userID, from)
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	out := make([]*models.Recording, 0)
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, translate("recordings between", err)
	}
	return out, nil
}

func (s *GormStore) CountRecordingsSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Recording{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&n).Error
	if err != nil {
		return 0, translate("count recordings", err)
	}
	return int(n), nil
}

func (s *GormStore) ListUserIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.WithContext(ctx).Model(&models.Recording{}).
		Distinct("user_id").Order("user_id").Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translate("list users", err)
	}
	return ids, nil
}

func (s *GormStore) GetAnalytics(ctx context.Context, userID string) (*models.UserAnalytics, error) {
	var a models.UserAnalytics
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return nil, translate("get analytics", err)
	}
	return &a, nil
}

func (s *GormStore) UpdateAnalytics(ctx context.Context, userID string, rec *models.Recording, fn AnalyticsMutator) (*models.UserAnalytics, error) {
	var out *models.UserAnalytics
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.UserAnalytics
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&a).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			a = *models.NewUserAnalytics(userID)
		case err != nil:
			return err
		}

		if err := fn(&a); err != nil {
			return err
		}
		if rec != nil {
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(&a).Error; err != nil {
			return err
		}
		out = &a
		return nil
	})
	if err != nil {
		return nil, translate("update analytics", err)
	}
	return out, nil
}

func (s *GormStore) ReplaceAnalytics(ctx context.Context, a *models.UserAnalytics) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(a).Error
	return translate("replace analytics", err)
}

func (s *GormStore) nextPosition(tx *gorm.DB) (int, error) {
	var pos sql.NullInt64
	if err := tx.Model(&models.Badge{}).Select("MAX(position)").Row().Scan(&pos); err != nil {
		return 0, err
	}
	if !pos.Valid {
		return 0, nil
	}
	return int(pos.Int64) + 1, nil
}

func (s *GormStore) UpsertBadge(ctx context.Context, b *models.Badge) (*models.Badge, error) {
	var out models.Badge
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Badge
		err := tx.Where("name = ?", b.Name).First(&existing).Error
		switch {
		case err == nil:
			existing.Description = b.Description
			existing.Category = b.Category
			existing.IconName = b.IconName
			existing.Criteria = b.Criteria
			if err := tx.Model(&existing).Select("description", "category", "icon_name", "criteria").Updates(&existing).Error; err != nil {
				return err
			}
			out = existing
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		pos, err := s.nextPosition(tx)
		if err != nil {
			return err
		}
		c := *b
		c.Position = pos
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, translate("upsert badge", err)
	}
	return &out, nil
}

func (s *GormStore) CreateBadge(ctx context.Context, b *models.Badge) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := s.nextPosition(tx)
		if err != nil {
			return err
		}
		b.Position = pos
		return tx.Create(b).Error
	})
	return translate("create badge", err)
}

func (s *GormStore) ListActiveBadges(ctx context.Context) ([]*models.Badge, error) {
	out := make([]*models.Badge, 0)
	err := s.db.WithContext(ctx).Where("is_active = ?", true).
		Order("position ASC").Order("created_at ASC").Find(&out).Error
	if err != nil {
		return nil, translate("list badges", err)
	}
	return out, nil
}

func (s *GormStore) InsertUserBadge(ctx context.Context, ub *models.UserBadge) error {
	return translate("insert user badge", s.db.WithContext(ctx).Create(ub).Error)
}

func (s *GormStore) ListUserBadges(ctx context.Context, userID string) ([]*models.UserBadge, error) {
	out := make([]*models.UserBadge, 0)
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("unlocked_at ASC").Find(&out).Error
	if err != nil {
		return nil, translate("list user badges", err)
	}
	return out, nil
}

func (s *GormStore) SaveCoachingInsight(ctx context.Context, ins *models.CoachingInsight) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(ins).Error
	return translate("save coaching insight", err)
}

func (s *GormStore) LatestCoachingInsight(ctx context.Context, userID string) (*models.CoachingInsight, error) {
	var ins models.CoachingInsight
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&ins).Error; err != nil {
		return nil, translate("latest coaching insight", err)
	}
	return &ins, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps driver errors onto the domain taxonomy. Anything that is not
// a lookup miss or a uniqueness conflict is reported as a StoreError.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrAlreadyExists
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrAlreadyExists):
		return err
	default:
		return models.NewStoreError(op, err)
	}
}
