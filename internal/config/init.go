package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Init() {
	// بارگذاری .env
	if err := godotenv.Load(); err != nil {
		Logger.Info("No .env file found, using system environment variables")
	}

	// متغیرهای اجباری
	required := []string{
		"DB_DSN",
		"REDIS_ADDR",
		"JWT_SECRET",
		"CRON_SECRET",
		"TWITTER_CLIENT_ID",
		"TWITTER_CLIENT_SECRET",
	}
	for _, key := range required {
		if os.Getenv(key) == "" {
			Logger.Fatal(key + " is not set")
		}
	}
}

// DispatchBatchSize حداکثر تعداد توییت در هر cycle
func DispatchBatchSize() int {
	n, err := strconv.Atoi(os.Getenv("DISPATCH_BATCH_SIZE"))
	if err != nil || n <= 0 {
		return 25 // مقدار پیش‌فرض
	}
	return n
}

// DispatchCronSpec زمان‌بندی اجرای خودکار dispatch
func DispatchCronSpec() string {
	if spec := os.Getenv("DISPATCH_CRON"); spec != "" {
		return spec
	}
	return "@every 5m"
}

// DispatchItemDelay مکث بین پردازش توییت‌ها برای رعایت rate limit
func DispatchItemDelay() time.Duration {
	n, err := strconv.Atoi(os.Getenv("DISPATCH_ITEM_DELAY_MS"))
	if err != nil || n < 0 {
		return time.Second
	}
	return time.Duration(n) * time.Millisecond
}
