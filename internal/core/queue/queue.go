package queue

import (
	"time"

	"github.com/gofrs/uuid"
	"chakavak/internal/core/user"
)

// وضعیت‌های ممکن برای یک توییت در صف
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPosted     = "posted"
	StatusFailed     = "failed"
)

const (
	// MaxContentLength حداکثر طول متن توییت
	MaxContentLength = 280
	// MaxErrorLength حداکثر طول متن خطای ذخیره‌شده
	MaxErrorLength = 500
	// MaxRetries بعد از این تعداد تلاش، توییت failed می‌شود
	MaxRetries = 3
	// RetryDelay تعویق زمان‌بندی بعد از rate limit
	RetryDelay = 15 * time.Minute
)

type QueuedTweet struct {
	ID          uuid.UUID  `gorm:"primary_key;type:char(36);default:uuid()"`
	UserID      uuid.UUID  `gorm:"type:char(36);not null;index"`
	User        user.User  `gorm:"foreignkey:UserID"` // ارتباط با مدل User
	Content     string     `gorm:"type:varchar(280);not null"`
	MediaURL    string     `gorm:"type:text"`
	ScheduledAt time.Time  `gorm:"not null;index"`
	Status      string     `gorm:"type:varchar(20);not null;default:pending;index"` // pending, processing, posted, failed
	PostedAt    *time.Time `gorm:""`
	RetryCount  int        `gorm:"not null;default:0"`
	LastError   string     `gorm:"type:varchar(500)"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	DeletedAt   *time.Time `gorm:"index"`
}
