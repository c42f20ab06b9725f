package settings

import (
	"time"

	"github.com/gofrs/uuid"
)

// مقادیر پیش‌فرض وقتی کاربر هنوز تنظیماتی ذخیره نکرده
const (
	DefaultIntervalMinutes = 60
	DefaultMaxPostsPerDay  = 10
	DefaultDailyPostTime   = "20:00"

	MinIntervalMinutes = 15
	MinPostsPerDay     = 1
	MaxPostsPerDay     = 50
)

type PostingSettings struct {
	ID                  uuid.UUID  `gorm:"primary_key;type:char(36);default:uuid()"`
	UserID              uuid.UUID  `gorm:"type:char(36);unique;not null"`
	AutoPostEnabled     bool       `gorm:"not null;default:false"`
	PostIntervalMinutes int        `gorm:"not null;default:60"`
	MaxPostsPerDay      int        `gorm:"not null;default:10"`
	PostsToday          int        `gorm:"not null;default:0"` // فقط برای نمایش؛ gate از پنجره‌ی ۲۴ ساعته استفاده می‌کند
	LastPostAt          *time.Time `gorm:""`
	DailyPostTime       string     `gorm:"type:varchar(5);not null;default:'20:00'"` // HH:mm
	Timezone            string     `gorm:"type:varchar(64);not null;default:'UTC'"`
	CreatedAt           time.Time  `gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime"`
}

// Defaults تنظیمات پیش‌فرض برای کاربری که رکورد ندارد
func Defaults(userID uuid.UUID) *PostingSettings {
	return &PostingSettings{
		UserID:              userID,
		AutoPostEnabled:     false,
		PostIntervalMinutes: DefaultIntervalMinutes,
		MaxPostsPerDay:      DefaultMaxPostsPerDay,
		DailyPostTime:       DefaultDailyPostTime,
		Timezone:            "UTC",
	}
}
