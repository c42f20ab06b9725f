package dispatchapp

import (
	"context"

	"go.uber.org/zap"

	userEntity "chakavak/internal/core/user"
	twitterPort "chakavak/internal/ports/twitter"
)

// attemptPost یک تلاش ارسال با حداکثر یک refresh-and-retry.
// اگر تلاش اول با خطای auth رد شد، دقیقاً یک بار refresh و دوباره ارسال
// می‌کنیم؛ شکست دوم بدون تغییر به caller برمی‌گردد. هرگز حلقه‌ی refresh
// بی‌پایان تشکیل نمی‌شود.
func (s *DispatchService) attemptPost(ctx context.Context, userID string, creds *userEntity.Credentials, content, mediaID string) (string, error) {
	remoteID, err := s.Twitter.PostTweet(ctx, creds.AccessToken, content, mediaID)
	if err == nil {
		return remoteID, nil
	}
	if !twitterPort.IsAuthExpired(err) {
		return "", err
	}

	s.Logger.Info("🔄 Post rejected with auth error, refreshing token once", zap.String("userID", userID))
	refreshed, refreshErr := s.refreshAndPersist(ctx, userID, creds.RefreshToken)
	if refreshErr != nil {
		// خطای اصلی ارسال را برمی‌گردانیم، نه خطای refresh
		s.Logger.Error("❌ Refresh after auth error failed", zap.String("userID", userID), zap.Error(refreshErr))
		return "", err
	}
	creds.AccessToken = refreshed.AccessToken
	creds.RefreshToken = refreshed.RefreshToken

	return s.Twitter.PostTweet(ctx, creds.AccessToken, content, mediaID)
}

// refreshAndPersist تعویض توکن و ذخیره‌ی نتیجه روی رکورد کاربر
func (s *DispatchService) refreshAndPersist(ctx context.Context, userID, refreshToken string) (*twitterPort.RefreshedToken, error) {
	refreshed, err := s.Twitter.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	expiresAt := refreshed.ExpiresAt
	persistErr := s.UserRepository.UpdateTwitterTokens(userID, &userEntity.Credentials{
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshed.RefreshToken,
		ExpiresAt:    &expiresAt,
	})
	if persistErr != nil {
		// توکن جدید معتبر است؛ فقط ذخیره شکست خورده
		s.Logger.Error("❌ Could not persist refreshed tokens", zap.String("userID", userID), zap.Error(persistErr))
	}
	return refreshed, nil
}
