package queue

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"chakavak/internal/core/queue"
)

// QueueRepository پورت برای صف توییت‌ها
type QueueRepository interface {
	Create(ctx context.Context, tweet *queue.QueuedTweet) (*queue.QueuedTweet, error)
	FindByID(ctx context.Context, id uuid.UUID) (*queue.QueuedTweet, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queue.QueuedTweet, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error

	// LatestScheduledAt آخرین زمان‌بندی موجود برای کاربر (برای صف bulk)
	LatestScheduledAt(ctx context.Context, userID uuid.UUID) (*time.Time, error)

	// DueTweets توییت‌های pending که زمان‌شان رسیده، قدیمی‌ترین اول
	DueTweets(ctx context.Context, limit int) ([]*queue.QueuedTweet, error)

	// ClaimForPosting گذار شرطی pending→processing؛ فقط وقتی true برمی‌گرداند
	// که همین فراخوانی ردیف را گرفته باشد.
	ClaimForPosting(ctx context.Context, id uuid.UUID) (bool, error)

	MarkPosted(ctx context.Context, id uuid.UUID, postedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errText string, retryCount int) error
	// Reschedule برگشت به pending با زمان‌بندی جدید و retry_count افزایش‌یافته
	Reschedule(ctx context.Context, id uuid.UUID, scheduledAt time.Time, retryCount int, errText string) error
}

type TweetDTO struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Content     string  `json:"content"`
	MediaURL    string  `json:"media_url,omitempty"`
	ScheduledAt string  `json:"scheduled_at"`
	Status      string  `json:"status"`
	PostedAt    *string `json:"posted_at,omitempty"`
	RetryCount  int     `json:"retry_count"`
	LastError   string  `json:"last_error,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
