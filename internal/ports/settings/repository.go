package settings

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"chakavak/internal/core/settings"
)

// SettingsRepository پورت برای تنظیمات ارسال خودکار
type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*settings.PostingSettings, error)
	Upsert(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*settings.PostingSettings, error)
	// RecordPost بعد از ارسال موفق: شمارنده و last_post_at
	RecordPost(ctx context.Context, userID uuid.UUID, postedAt time.Time) error
}

// PostWindow شمارش ارسال‌های یک کاربر در پنجره‌ی زمانی rolling
type PostWindow interface {
	Add(ctx context.Context, userID string, at time.Time) error
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

type SettingsDTO struct {
	AutoPostEnabled     bool    `json:"auto_post_enabled"`
	PostIntervalMinutes int     `json:"post_interval_minutes"`
	MaxPostsPerDay      int     `json:"max_posts_per_day"`
	PostsToday          int     `json:"posts_today"`
	LastPostAt          *string `json:"last_post_at,omitempty"`
	DailyPostTime       string  `json:"daily_post_time"`
	Timezone            string  `json:"timezone"`
}
