package dispatch

import (
	"time"

	"chakavak/internal/core/settings"
)

// دلایل skip شدن یک توییت؛ اینها خطا نیستند و روی خود توییت ثبت نمی‌شوند
type SkipReason string

const (
	SkipPolicyDisabled     SkipReason = "auto-posting disabled"
	SkipDailyCapReached    SkipReason = "daily limit reached"
	SkipIntervalNotElapsed SkipReason = "interval not met"
	SkipNoCredentials      SkipReason = "twitter not connected"
	SkipClaimLost          SkipReason = "claimed by another cycle"
)

// ShouldDispatch چک‌های policy برای یک توییت due: فعال بودن ارسال خودکار،
// سقف روزانه (بر اساس پنجره‌ی ۲۴ ساعته)، و فاصله‌ی حداقلی بین ارسال‌ها.
// تابع pure است تا بدون دیتابیس تست شود.
func ShouldDispatch(s *settings.PostingSettings, postsInWindow int, now time.Time) (bool, SkipReason) {
	if s == nil || !s.AutoPostEnabled {
		return false, SkipPolicyDisabled
	}

	if postsInWindow >= s.MaxPostsPerDay {
		return false, SkipDailyCapReached
	}

	if s.LastPostAt != nil {
		elapsed := now.Sub(*s.LastPostAt)
		if elapsed < time.Duration(s.PostIntervalMinutes)*time.Minute {
			return false, SkipIntervalNotElapsed
		}
	}

	return true, ""
}
