package database

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"chakavak/internal/core/settings"
)

// SettingsRepositoryDatabase پیاده‌سازی SettingsRepository برای دیتابیس
type SettingsRepositoryDatabase struct {
	db *gorm.DB
}

// NewSettingsRepositoryDatabase سازنده SettingsRepositoryDatabase
func NewSettingsRepositoryDatabase(db *gorm.DB) *SettingsRepositoryDatabase {
	return &SettingsRepositoryDatabase{db: db}
}

func (repo *SettingsRepositoryDatabase) GetByUserID(ctx context.Context, userID uuid.UUID) (*settings.PostingSettings, error) {
	var s settings.PostingSettings
	err := repo.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (repo *SettingsRepositoryDatabase) Upsert(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*settings.PostingSettings, error) {
	existing, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		s := settings.Defaults(userID)
		s.ID = uuid.Must(uuid.NewV4())
		if err := repo.db.WithContext(ctx).Create(s).Error; err != nil {
			return nil, err
		}
		existing = s
	}
	if len(fields) > 0 {
		if err := repo.db.WithContext(ctx).Model(&settings.PostingSettings{}).
			Where("user_id = ?", userID).
			Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return repo.GetByUserID(ctx, userID)
}

func (repo *SettingsRepositoryDatabase) RecordPost(ctx context.Context, userID uuid.UUID, postedAt time.Time) error {
	return repo.db.WithContext(ctx).Model(&settings.PostingSettings{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"posts_today":  gorm.Expr("posts_today + 1"),
			"last_post_at": &postedAt,
		}).Error
}
