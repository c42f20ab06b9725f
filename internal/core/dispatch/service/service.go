package dispatchapp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chakavak/internal/core/dispatch"
	queueEntity "chakavak/internal/core/queue"
	queuePort "chakavak/internal/ports/queue"
	settingsPort "chakavak/internal/ports/settings"
	twitterPort "chakavak/internal/ports/twitter"
	userPort "chakavak/internal/ports/user"
)

const errTokenRefreshFailed = "token refresh failed"
const errRateLimited = "rate limited"

// DispatchService موتور ارسال خودکار: انتخاب توییت‌های due، اعمال policy،
// refresh توکن، آپلود رسانه، ارسال و ثبت نتیجه با retry محدود.
type DispatchService struct {
	QueueRepository    queuePort.QueueRepository
	SettingsRepository settingsPort.SettingsRepository
	PostWindow         settingsPort.PostWindow
	UserRepository     userPort.UserRepository
	Twitter            twitterPort.Client
	Logger             *zap.Logger

	BatchSize int
	ItemDelay time.Duration // مکث بین توییت‌ها برای رعایت rate limit

	now func() time.Time
}

func NewDispatchService(
	queueRepo queuePort.QueueRepository,
	settingsRepo settingsPort.SettingsRepository,
	postWindow settingsPort.PostWindow,
	userRepo userPort.UserRepository,
	twitterClient twitterPort.Client,
	batchSize int,
	itemDelay time.Duration,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		QueueRepository:    queueRepo,
		SettingsRepository: settingsRepo,
		PostWindow:         postWindow,
		UserRepository:     userRepo,
		Twitter:            twitterClient,
		Logger:             logger,
		BatchSize:          batchSize,
		ItemDelay:          itemDelay,
		now:                time.Now,
	}
}

// RunCycle یک دور کامل dispatch. خطای fetch کل cycle را متوقف می‌کند؛
// خطای هر توییت فقط همان توییت را.
func (s *DispatchService) RunCycle(ctx context.Context) (*dispatch.CycleSummary, error) {
	summary := &dispatch.CycleSummary{}

	due, err := s.QueueRepository.DueTweets(ctx, s.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due tweets: %w", err)
	}

	if len(due) == 0 {
		s.Logger.Info("✅ No pending tweets to post")
		return summary, nil
	}

	s.Logger.Info("📝 Found pending tweets", zap.Int("count", len(due)))

	for i, tweet := range due {
		// بعد از cancel، توییت جدیدی شروع نمی‌شود
		if ctx.Err() != nil {
			s.Logger.Info("🛑 Dispatch cycle cancelled", zap.Int("processed", summary.Processed))
			break
		}

		summary.Add(s.processTweet(ctx, tweet))

		if i < len(due)-1 && s.ItemDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.ItemDelay):
			}
		}
	}

	s.Logger.Info("✅ Dispatch cycle completed",
		zap.Int("processed", summary.Processed),
		zap.Int("posted", summary.Posted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("retried", summary.Retried),
	)
	return summary, nil
}

// processTweet پردازش یک توییت؛ panic هم فقط همین توییت را خراب می‌کند
func (s *DispatchService) processTweet(ctx context.Context, tweet *queueEntity.QueuedTweet) (outcome dispatch.ItemOutcome) {
	outcome = dispatch.ItemOutcome{
		TweetID: tweet.ID.String(),
		UserID:  tweet.UserID.String(),
	}

	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("❌ Panic while processing tweet",
				zap.String("tweetID", tweet.ID.String()), zap.Any("panic", r))
			outcome.Result = dispatch.ResultFailed
			outcome.Reason = fmt.Sprintf("panic: %v", r)
		}
	}()

	now := s.now().UTC()
	userID := tweet.UserID.String()

	// policy gate — skipها حالت عادی هستند، نه خطا
	policy, err := s.SettingsRepository.GetByUserID(ctx, tweet.UserID)
	if err != nil {
		s.Logger.Error("❌ Error loading posting settings", zap.String("userID", userID), zap.Error(err))
		outcome.Result = dispatch.ResultFailed
		outcome.Reason = "settings lookup failed"
		return outcome
	}

	postsInWindow, err := s.PostWindow.CountSince(ctx, userID, now.Add(-24*time.Hour))
	if err != nil {
		// اگر Redis در دسترس نبود، به شمارنده‌ی ذخیره‌شده برمی‌گردیم
		s.Logger.Warn("⚠️ Post window unavailable, falling back to stored counter",
			zap.String("userID", userID), zap.Error(err))
		if policy != nil {
			postsInWindow = policy.PostsToday
		}
	}

	if ok, reason := dispatch.ShouldDispatch(policy, postsInWindow, now); !ok {
		s.Logger.Info("⏭️ Skipping tweet",
			zap.String("tweetID", tweet.ID.String()), zap.String("reason", string(reason)))
		outcome.Result = dispatch.ResultSkipped
		outcome.Reason = string(reason)
		return outcome
	}

	creds, err := s.UserRepository.GetCredentials(userID)
	if err != nil {
		s.Logger.Error("❌ Error loading credentials", zap.String("userID", userID), zap.Error(err))
		outcome.Result = dispatch.ResultFailed
		outcome.Reason = "credentials lookup failed"
		return outcome
	}
	if !creds.HasAccessToken() {
		s.Logger.Info("⏭️ Skipping tweet", zap.String("tweetID", tweet.ID.String()),
			zap.String("reason", string(dispatch.SkipNoCredentials)))
		outcome.Result = dispatch.ResultSkipped
		outcome.Reason = string(dispatch.SkipNoCredentials)
		return outcome
	}

	// از اینجا به بعد وضعیت توییت تغییر می‌کند؛ اول claim می‌کنیم تا
	// cycle همزمان همان توییت را دوباره نفرستد
	claimed, err := s.QueueRepository.ClaimForPosting(ctx, tweet.ID)
	if err != nil {
		s.Logger.Error("❌ Error claiming tweet", zap.String("tweetID", tweet.ID.String()), zap.Error(err))
		outcome.Result = dispatch.ResultFailed
		outcome.Reason = "claim failed"
		return outcome
	}
	if !claimed {
		outcome.Result = dispatch.ResultSkipped
		outcome.Reason = string(dispatch.SkipClaimLost)
		return outcome
	}

	// توکن منقضی‌شده قبل از ارسال refresh می‌شود
	if creds.Expired(now) {
		s.Logger.Info("🔄 Refreshing token", zap.String("userID", userID))
		refreshed, err := s.refreshAndPersist(ctx, userID, creds.RefreshToken)
		if err != nil {
			s.Logger.Error("❌ Token refresh failed", zap.String("userID", userID), zap.Error(err))
			return s.recordFailure(ctx, tweet, errTokenRefreshFailed, outcome)
		}
		creds.AccessToken = refreshed.AccessToken
		creds.RefreshToken = refreshed.RefreshToken
	}

	// خطای رسانه نباید ارسال متن را متوقف کند
	mediaID := ""
	if tweet.MediaURL != "" {
		mediaID, err = s.Twitter.UploadMedia(ctx, creds.AccessToken, tweet.MediaURL)
		if err != nil {
			s.Logger.Warn("⚠️ Failed to upload media, posting without it",
				zap.String("tweetID", tweet.ID.String()), zap.Error(err))
			mediaID = ""
		}
	}

	s.Logger.Info("📤 Posting tweet", zap.String("tweetID", tweet.ID.String()))
	remoteID, err := s.attemptPost(ctx, userID, creds, tweet.Content, mediaID)
	if err != nil {
		if twitterPort.IsRateLimited(err) {
			return s.recordRateLimited(ctx, tweet, outcome)
		}
		return s.recordFailure(ctx, tweet, err.Error(), outcome)
	}

	postedAt := s.now().UTC()
	if err := s.QueueRepository.MarkPosted(ctx, tweet.ID, postedAt); err != nil {
		// توییت در توییتر ارسال شده ولی ثبت محلی شکست خورده؛ ردیف دیگر
		// pending نیست پس دوباره ارسال نمی‌شود
		s.Logger.Error("‼️ Tweet posted remotely but local update failed",
			zap.String("tweetID", tweet.ID.String()),
			zap.String("remoteID", remoteID),
			zap.Error(err))
	}
	if err := s.SettingsRepository.RecordPost(ctx, tweet.UserID, postedAt); err != nil {
		s.Logger.Error("❌ Error updating posting settings", zap.String("userID", userID), zap.Error(err))
	}
	if err := s.PostWindow.Add(ctx, userID, postedAt); err != nil {
		s.Logger.Warn("⚠️ Could not record post in window", zap.String("userID", userID), zap.Error(err))
	}

	s.Logger.Info("✅ Successfully posted tweet",
		zap.String("tweetID", tweet.ID.String()), zap.String("remoteID", remoteID))
	outcome.Result = dispatch.ResultPosted
	return outcome
}

// recordRateLimited برگرداندن به صف با تعویق ۱۵ دقیقه‌ای، تا سقف سه تلاش
func (s *DispatchService) recordRateLimited(ctx context.Context, tweet *queueEntity.QueuedTweet, outcome dispatch.ItemOutcome) dispatch.ItemOutcome {
	retry := tweet.RetryCount + 1
	if retry >= queueEntity.MaxRetries {
		if err := s.QueueRepository.MarkFailed(ctx, tweet.ID, errRateLimited, retry); err != nil {
			s.Logger.Error("❌ Error marking tweet failed", zap.String("tweetID", tweet.ID.String()), zap.Error(err))
		}
		outcome.Result = dispatch.ResultFailed
		outcome.Reason = errRateLimited
		return outcome
	}

	deferred := s.now().UTC().Add(queueEntity.RetryDelay)
	if err := s.QueueRepository.Reschedule(ctx, tweet.ID, deferred, retry, errRateLimited); err != nil {
		s.Logger.Error("❌ Error rescheduling tweet", zap.String("tweetID", tweet.ID.String()), zap.Error(err))
		outcome.Result = dispatch.ResultFailed
		outcome.Reason = "reschedule failed"
		return outcome
	}

	s.Logger.Info("⏳ Tweet rate limited, deferred",
		zap.String("tweetID", tweet.ID.String()),
		zap.Time("scheduledAt", deferred),
		zap.Int("retryCount", retry))
	outcome.Result = dispatch.ResultRetried
	outcome.Reason = errRateLimited
	return outcome
}

// recordFailure سه تلاش ناموفق یعنی failed؛ قبل از آن pending می‌ماند
func (s *DispatchService) recordFailure(ctx context.Context, tweet *queueEntity.QueuedTweet, errText string, outcome dispatch.ItemOutcome) dispatch.ItemOutcome {
	retry := tweet.RetryCount + 1
	if retry >= queueEntity.MaxRetries {
		if err := s.QueueRepository.MarkFailed(ctx, tweet.ID, errText, retry); err != nil {
			s.Logger.Error("❌ Error marking tweet failed", zap.String("tweetID", tweet.ID.String()), zap.Error(err))
		}
		s.Logger.Error("❌ Tweet failed permanently",
			zap.String("tweetID", tweet.ID.String()), zap.Int("retryCount", retry), zap.String("error", errText))
		outcome.Result = dispatch.ResultFailed
		outcome.Reason = errText
		return outcome
	}

	// همان زمان‌بندی قبلی؛ cycle بعدی دوباره تلاش می‌کند
	if err := s.QueueRepository.Reschedule(ctx, tweet.ID, tweet.ScheduledAt, retry, errText); err != nil {
		s.Logger.Error("❌ Error recording tweet failure", zap.String("tweetID", tweet.ID.String()), zap.Error(err))
		outcome.Result = dispatch.ResultFailed
		outcome.Reason = "reschedule failed"
		return outcome
	}

	s.Logger.Warn("⚠️ Tweet attempt failed, will retry next cycle",
		zap.String("tweetID", tweet.ID.String()), zap.Int("retryCount", retry), zap.String("error", errText))
	outcome.Result = dispatch.ResultRetried
	outcome.Reason = errText
	return outcome
}
