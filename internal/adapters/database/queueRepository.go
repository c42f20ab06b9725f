package database

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"chakavak/internal/core/queue"
)

// QueueRepositoryDatabase پیاده‌سازی QueueRepository برای دیتابیس
type QueueRepositoryDatabase struct {
	db *gorm.DB
}

// NewQueueRepositoryDatabase سازنده QueueRepositoryDatabase
func NewQueueRepositoryDatabase(db *gorm.DB) *QueueRepositoryDatabase {
	return &QueueRepositoryDatabase{db: db}
}

func (repo *QueueRepositoryDatabase) Create(ctx context.Context, tweet *queue.QueuedTweet) (*queue.QueuedTweet, error) {
	if err := repo.db.WithContext(ctx).Create(tweet).Error; err != nil {
		return nil, err
	}
	return tweet, nil
}

func (repo *QueueRepositoryDatabase) FindByID(ctx context.Context, id uuid.UUID) (*queue.QueuedTweet, error) {
	var tweet queue.QueuedTweet
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&tweet).Error; err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (repo *QueueRepositoryDatabase) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queue.QueuedTweet, error) {
	var tweets []*queue.QueuedTweet
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_at ASC").
		Find(&tweets).Error; err != nil {
		return nil, err
	}
	return tweets, nil
}

func (repo *QueueRepositoryDatabase) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return repo.db.WithContext(ctx).Model(&queue.QueuedTweet{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (repo *QueueRepositoryDatabase) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.db.WithContext(ctx).Where("id = ?", id).Delete(&queue.QueuedTweet{}).Error
}

func (repo *QueueRepositoryDatabase) LatestScheduledAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var tweet queue.QueuedTweet
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, queue.StatusPending).
		Order("scheduled_at DESC").
		First(&tweet).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tweet.ScheduledAt, nil
}

// DueTweets توییت‌های pending که scheduled_at آنها گذشته، قدیمی‌ترین اول
func (repo *QueueRepositoryDatabase) DueTweets(ctx context.Context, limit int) ([]*queue.QueuedTweet, error) {
	var tweets []*queue.QueuedTweet
	if err := repo.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", queue.StatusPending, time.Now().UTC()).
		Order("scheduled_at ASC, created_at ASC").
		Limit(limit).
		Find(&tweets).Error; err != nil {
		return nil, err
	}
	return tweets, nil
}

// ClaimForPosting آپدیت شرطی: فقط اگر ردیف هنوز pending باشد آن را می‌گیرد.
// دو cycle همزمان روی یک توییت، فقط یکی RowsAffected=1 می‌گیرد.
func (repo *QueueRepositoryDatabase) ClaimForPosting(ctx context.Context, id uuid.UUID) (bool, error) {
	res := repo.db.WithContext(ctx).Model(&queue.QueuedTweet{}).
		Where("id = ? AND status = ?", id, queue.StatusPending).
		Update("status", queue.StatusProcessing)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (repo *QueueRepositoryDatabase) MarkPosted(ctx context.Context, id uuid.UUID, postedAt time.Time) error {
	return repo.db.WithContext(ctx).Model(&queue.QueuedTweet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     queue.StatusPosted,
			"posted_at":  &postedAt,
			"last_error": "",
		}).Error
}

func (repo *QueueRepositoryDatabase) MarkFailed(ctx context.Context, id uuid.UUID, errText string, retryCount int) error {
	return repo.db.WithContext(ctx).Model(&queue.QueuedTweet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      queue.StatusFailed,
			"last_error":  truncateError(errText),
			"retry_count": retryCount,
		}).Error
}

func (repo *QueueRepositoryDatabase) Reschedule(ctx context.Context, id uuid.UUID, scheduledAt time.Time, retryCount int, errText string) error {
	return repo.db.WithContext(ctx).Model(&queue.QueuedTweet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       queue.StatusPending,
			"scheduled_at": scheduledAt,
			"retry_count":  retryCount,
			"last_error":   truncateError(errText),
		}).Error
}

// truncateError برش روی مرز rune؛ برش وسط یک کاراکتر چندبایتی رشته‌ی
// نامعتبر UTF-8 می‌سازد که MySQL در حالت strict رد می‌کند
func truncateError(s string) string {
	if len(s) <= queue.MaxErrorLength {
		return s
	}
	cut := queue.MaxErrorLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
