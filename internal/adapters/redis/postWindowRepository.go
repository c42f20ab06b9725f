package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// PostWindowRepositoryRedis شمارش ارسال‌ها در پنجره‌ی ۲۴ ساعته با ZSET
type PostWindowRepositoryRedis struct {
	Client *redis.Client
}

func NewPostWindowRepositoryRedis(client *redis.Client) *PostWindowRepositoryRedis {
	return &PostWindowRepositoryRedis{
		Client: client,
	}
}

func windowKey(userID string) string {
	return "posted:" + userID
}

// Add ثبت زمان یک ارسال موفق در ZSET کاربر
func (r *PostWindowRepositoryRedis) Add(ctx context.Context, userID string, at time.Time) error {
	key := windowKey(userID)

	z := &redis.Z{
		Score:  float64(at.Unix()),
		Member: strconv.FormatInt(at.UnixNano(), 10),
	}

	if err := r.Client.ZAdd(ctx, key, z).Err(); err != nil {
		return err
	}

	// بیشتر از ۴۸ ساعت لازم نداریم
	return r.Client.Expire(ctx, key, 48*time.Hour).Err()
}

// CountSince تعداد ارسال‌ها از زمان since به بعد؛ اعضای قدیمی‌تر حذف می‌شوند
func (r *PostWindowRepositoryRedis) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	key := windowKey(userID)

	// پاک کردن اعضای خارج از پنجره
	if err := r.Client.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(since.Unix()-1, 10)).Err(); err != nil {
		return 0, err
	}

	n, err := r.Client.ZCount(ctx, key, strconv.FormatInt(since.Unix(), 10), "+inf").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
