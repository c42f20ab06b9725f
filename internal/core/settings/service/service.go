package settingsapp

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	settingsEntity "chakavak/internal/core/settings"
	settingsPort "chakavak/internal/ports/settings"
)

// SettingsService سرویس تنظیمات ارسال خودکار
type SettingsService struct {
	SettingsRepository settingsPort.SettingsRepository
	PostWindow         settingsPort.PostWindow
}

func NewSettingsService(repo settingsPort.SettingsRepository, window settingsPort.PostWindow) *SettingsService {
	return &SettingsService{
		SettingsRepository: repo,
		PostWindow:         window,
	}
}

// Get تنظیمات کاربر؛ اگر رکورد نداشته باشد مقادیر پیش‌فرض برمی‌گردد
func (s *SettingsService) Get(ctx context.Context, userID string) (*settingsPort.SettingsDTO, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid userID: %w", err)
	}

	stored, err := s.SettingsRepository.GetByUserID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = settingsEntity.Defaults(uid)
	}
	return toDTO(stored), nil
}

type UpdateInput struct {
	AutoPostEnabled     *bool
	PostIntervalMinutes *int
	MaxPostsPerDay      *int
	DailyPostTime       *string
	Timezone            *string
}

// Update اعتبارسنجی و ذخیره‌ی تنظیمات
func (s *SettingsService) Update(ctx context.Context, userID string, in UpdateInput) (*settingsPort.SettingsDTO, error) {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid userID: %w", err)
	}

	fields := map[string]interface{}{}
	if in.AutoPostEnabled != nil {
		fields["auto_post_enabled"] = *in.AutoPostEnabled
	}
	if in.PostIntervalMinutes != nil {
		if *in.PostIntervalMinutes < settingsEntity.MinIntervalMinutes {
			return nil, fmt.Errorf("post interval must be at least %d minutes", settingsEntity.MinIntervalMinutes)
		}
		fields["post_interval_minutes"] = *in.PostIntervalMinutes
	}
	if in.MaxPostsPerDay != nil {
		if *in.MaxPostsPerDay < settingsEntity.MinPostsPerDay || *in.MaxPostsPerDay > settingsEntity.MaxPostsPerDay {
			return nil, fmt.Errorf("max posts per day must be between %d and %d", settingsEntity.MinPostsPerDay, settingsEntity.MaxPostsPerDay)
		}
		fields["max_posts_per_day"] = *in.MaxPostsPerDay
	}
	if in.DailyPostTime != nil {
		if _, err := time.Parse("15:04", *in.DailyPostTime); err != nil {
			return nil, fmt.Errorf("invalid daily post time: %w", err)
		}
		fields["daily_post_time"] = *in.DailyPostTime
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return nil, fmt.Errorf("invalid timezone: %w", err)
		}
		fields["timezone"] = *in.Timezone
	}

	updated, err := s.SettingsRepository.Upsert(ctx, uid, fields)
	if err != nil {
		return nil, err
	}
	return toDTO(updated), nil
}

// RecordPost بعد از ارسال موفق؛ هم شمارنده‌ی نمایشی و هم پنجره‌ی rolling
func (s *SettingsService) RecordPost(ctx context.Context, userID string, postedAt time.Time) error {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return fmt.Errorf("invalid userID: %w", err)
	}
	if err := s.SettingsRepository.RecordPost(ctx, uid, postedAt); err != nil {
		return err
	}
	return s.PostWindow.Add(ctx, userID, postedAt)
}

func toDTO(s *settingsEntity.PostingSettings) *settingsPort.SettingsDTO {
	dto := &settingsPort.SettingsDTO{
		AutoPostEnabled:     s.AutoPostEnabled,
		PostIntervalMinutes: s.PostIntervalMinutes,
		MaxPostsPerDay:      s.MaxPostsPerDay,
		PostsToday:          s.PostsToday,
		DailyPostTime:       s.DailyPostTime,
		Timezone:            s.Timezone,
	}
	if s.LastPostAt != nil {
		lastPost := s.LastPostAt.UTC().Format(time.RFC3339)
		dto.LastPostAt = &lastPost
	}
	return dto
}
