package queueapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	queueEntity "chakavak/internal/core/queue"
	settingsEntity "chakavak/internal/core/settings"
	queuePort "chakavak/internal/ports/queue"
	settingsPort "chakavak/internal/ports/settings"
)

var ErrContentTooLong = fmt.Errorf("tweet exceeds %d characters", queueEntity.MaxContentLength)
var ErrEmptyContent = errors.New("content is required")

// QueueService سرویس مدیریت صف توییت‌ها
type QueueService struct {
	QueueRepository    queuePort.QueueRepository
	SettingsRepository settingsPort.SettingsRepository
}

func NewQueueService(queueRepo queuePort.QueueRepository, settingsRepo settingsPort.SettingsRepository) *QueueService {
	return &QueueService{
		QueueRepository:    queueRepo,
		SettingsRepository: settingsRepo,
	}
}

// Enqueue اضافه کردن یک توییت به صف
func (s *QueueService) Enqueue(ctx context.Context, userID, content, mediaURL string, scheduledAt time.Time) (*queuePort.TweetDTO, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid userID: %w", err)
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	tweet := &queueEntity.QueuedTweet{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      uid,
		Content:     strings.TrimSpace(content),
		MediaURL:    mediaURL,
		ScheduledAt: scheduledAt.UTC(),
		Status:      queueEntity.StatusPending,
	}

	created, err := s.QueueRepository.Create(ctx, tweet)
	if err != nil {
		return nil, fmt.Errorf("failed to create tweet: %w", err)
	}
	return toDTO(created), nil
}

// EnqueueBulk هر توییت در یک روز متوالی، در ساعت ارسال روزانه‌ی کاربر
func (s *QueueService) EnqueueBulk(ctx context.Context, userID string, contents []string) (int, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return 0, fmt.Errorf("invalid userID: %w", err)
	}

	prefs, err := s.SettingsRepository.GetByUserID(ctx, uid)
	if err != nil {
		return 0, err
	}
	dailyTime := settingsEntity.DefaultDailyPostTime
	tz := "UTC"
	if prefs != nil {
		if prefs.DailyPostTime != "" {
			dailyTime = prefs.DailyPostTime
		}
		if prefs.Timezone != "" {
			tz = prefs.Timezone
		}
	}

	latest, err := s.QueueRepository.LatestScheduledAt(ctx, uid)
	if err != nil {
		return 0, err
	}
	next := nextScheduledTime(time.Now(), latest, dailyTime, tz)

	count := 0
	for _, content := range contents {
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		if err := validateContent(content); err != nil {
			return count, err
		}

		tweet := &queueEntity.QueuedTweet{
			ID:          uuid.Must(uuid.NewV4()),
			UserID:      uid,
			Content:     content,
			ScheduledAt: next.UTC(),
			Status:      queueEntity.StatusPending,
		}
		if _, err := s.QueueRepository.Create(ctx, tweet); err != nil {
			return count, fmt.Errorf("failed to create tweet: %w", err)
		}
		count++

		// توییت بعدی، روز بعد
		next = next.AddDate(0, 0, 1)
	}
	return count, nil
}

// List صف توییت‌های کاربر، به ترتیب زمان‌بندی
func (s *QueueService) List(ctx context.Context, userID string) ([]*queuePort.TweetDTO, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid userID: %w", err)
	}
	tweets, err := s.QueueRepository.FindByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	dtos := make([]*queuePort.TweetDTO, 0, len(tweets))
	for _, t := range tweets {
		dtos = append(dtos, toDTO(t))
	}
	return dtos, nil
}

// Update ویرایش توییتی که هنوز ارسال نشده
func (s *QueueService) Update(ctx context.Context, userID, tweetID string, content *string, mediaURL *string, scheduledAt *time.Time) error {
	tweet, err := s.ownedTweet(ctx, userID, tweetID)
	if err != nil {
		return err
	}
	if tweet.Status != queueEntity.StatusPending {
		return errors.New("only pending tweets can be edited")
	}

	fields := map[string]interface{}{}
	if content != nil {
		if err := validateContent(*content); err != nil {
			return err
		}
		fields["content"] = strings.TrimSpace(*content)
	}
	if mediaURL != nil {
		fields["media_url"] = *mediaURL
	}
	if scheduledAt != nil {
		fields["scheduled_at"] = scheduledAt.UTC()
	}
	if len(fields) == 0 {
		return nil
	}
	return s.QueueRepository.Update(ctx, tweet.ID, fields)
}

// Delete حذف توییت از صف
func (s *QueueService) Delete(ctx context.Context, userID, tweetID string) error {
	tweet, err := s.ownedTweet(ctx, userID, tweetID)
	if err != nil {
		return err
	}
	return s.QueueRepository.Delete(ctx, tweet.ID)
}

func (s *QueueService) ownedTweet(ctx context.Context, userID, tweetID string) (*queueEntity.QueuedTweet, error) {
	tid, err := uuid.FromString(tweetID)
	if err != nil {
		return nil, fmt.Errorf("invalid tweetID: %w", err)
	}
	tweet, err := s.QueueRepository.FindByID(ctx, tid)
	if err != nil {
		return nil, err
	}
	if tweet.UserID.String() != userID {
		return nil, errors.New("tweet does not belong to user")
	}
	return tweet, nil
}

func validateContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyContent
	}
	if len([]rune(trimmed)) > queueEntity.MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// nextScheduledTime اولین جای خالی برای زمان‌بندی bulk:
// روز بعد از آخرین توییت زمان‌بندی‌شده، وگرنه امروز/فردا در ساعت روزانه
func nextScheduledTime(now time.Time, latest *time.Time, dailyTime, tz string) time.Time {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	hour, minute := parseDailyTime(dailyTime)

	base := now.In(loc)
	if latest != nil && latest.After(now) {
		base = latest.In(loc).AddDate(0, 0, 1)
	}

	candidate := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, loc)
	if !candidate.After(now.In(loc)) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func parseDailyTime(s string) (int, int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 20, 0
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 20, 0
	}
	return hour, minute
}

func toDTO(t *queueEntity.QueuedTweet) *queuePort.TweetDTO {
	dto := &queuePort.TweetDTO{
		ID:          t.ID.String(),
		UserID:      t.UserID.String(),
		Content:     t.Content,
		MediaURL:    t.MediaURL,
		ScheduledAt: t.ScheduledAt.UTC().Format(time.RFC3339),
		Status:      t.Status,
		RetryCount:  t.RetryCount,
		LastError:   t.LastError,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.PostedAt != nil {
		postedAt := t.PostedAt.UTC().Format(time.RFC3339)
		dto.PostedAt = &postedAt
	}
	return dto
}
