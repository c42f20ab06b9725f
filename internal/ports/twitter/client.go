package twitter

import (
	"context"
	"errors"
	"time"
)

// Client پورت برای API توییتر
type Client interface {
	// PostTweet ارسال توییت؛ شناسه‌ی توییت ارسال‌شده را برمی‌گرداند
	PostTweet(ctx context.Context, accessToken, content, mediaID string) (string, error)
	// UploadMedia دانلود از mediaURL و آپلود به توییتر
	UploadMedia(ctx context.Context, accessToken, mediaURL string) (string, error)
	// RefreshToken تعویض refresh token با access token جدید
	RefreshToken(ctx context.Context, refreshToken string) (*RefreshedToken, error)
}

type RefreshedToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ErrorKind دسته‌بندی خطاهای API توییتر
type ErrorKind int

const (
	ErrKindOther ErrorKind = iota
	ErrKindRateLimited
	ErrKindAuthExpired
)

type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsRateLimited خطای 429 یا rate limit توییتر
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == ErrKindRateLimited
}

// IsAuthExpired خطای 401/403 (توکن منقضی یا باطل)
func IsAuthExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == ErrKindAuthExpired
}
