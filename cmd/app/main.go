package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	dbadapter "chakavak/internal/adapters/database"
	"chakavak/internal/adapters/httpapi"
	redisadapter "chakavak/internal/adapters/redis"
	twitteradapter "chakavak/internal/adapters/twitter"
	"chakavak/internal/config"
	dispatchapp "chakavak/internal/core/dispatch/service"
	"chakavak/internal/core/queue"
	queueapp "chakavak/internal/core/queue/service"
	"chakavak/internal/core/settings"
	settingsapp "chakavak/internal/core/settings/service"
	"chakavak/internal/core/user"
	userapp "chakavak/internal/core/user/service"
	"chakavak/internal/workers"
)

func main() {
	config.InitLogger()
	config.Init() // بارگذاری تنظیمات از .env

	// اتصال به دیتابیس و اجرای مایگریشن‌ها
	config.InitDB()

	// اعمال مایگریشن برای مدل‌ها
	if err := config.DB.AutoMigrate(
		&user.User{},
		&queue.QueuedTweet{},
		&settings.PostingSettings{},
	); err != nil {
		config.Logger.Fatal("Error during migrations:", zap.Error(err))
	}

	config.Logger.Info("✅ Database migrations completed")

	// اتصال به Redis
	config.InitRedis()

	// بستن منابع بعد از اتمام کار سرور
	defer closeResources(config.Logger)

	config.Logger.Info("App is running...")

	userRepo := dbadapter.NewUserRepositoryDatabase(config.DB)             // آداپتر خروجی
	queueRepo := dbadapter.NewQueueRepositoryDatabase(config.DB)           // آداپتر خروجی
	settingsRepo := dbadapter.NewSettingsRepositoryDatabase(config.DB)     // آداپتر خروجی
	postWindow := redisadapter.NewPostWindowRepositoryRedis(config.RedisClient)

	twitterClient, err := twitteradapter.NewClientHTTP()
	if err != nil {
		config.Logger.Fatal("Failed to initialize twitter client:", zap.Error(err))
	}

	userSvc := userapp.NewUserService(userRepo, []byte(os.Getenv("JWT_SECRET"))) // یوزکیس/سرویس
	queueSvc := queueapp.NewQueueService(queueRepo, settingsRepo)                // یوزکیس/سرویس
	settingsSvc := settingsapp.NewSettingsService(settingsRepo, postWindow)      // یوزکیس/سرویس
	dispatchSvc := dispatchapp.NewDispatchService(
		queueRepo,
		settingsRepo,
		postWindow,
		userRepo,
		twitterClient,
		config.DispatchBatchSize(),
		config.DispatchItemDelay(),
		config.Logger,
	)

	r := httpapi.SetupRoutes(
		userSvc,
		queueSvc,
		settingsSvc,
		dispatchSvc,
		[]byte(os.Getenv("JWT_SECRET")),
		os.Getenv("CRON_SECRET"),
	)
	// -------------------------------------------

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dispatchWorker := workers.NewDispatchWorker(dispatchSvc, config.DispatchCronSpec(), config.Logger)

	// اجرای worker در پس‌زمینه
	go func() {
		if err := dispatchWorker.Run(ctx); err != nil {
			config.Logger.Error("❌ Dispatch worker failed", zap.Error(err))
		}
	}()

	// اجرای سرور Gin (در اینجا سرور به صورت بلوکینگ عمل می‌کند)
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		config.Logger.Fatal("Server failed to start:", zap.Error(err))
	}
}

// closeResources بستن اتصالات به Redis و دیتابیس
func closeResources(logger *zap.Logger) {
	// بستن اتصال به Redis
	if err := config.RedisClient.Close(); err != nil {
		logger.Error("Error closing Redis connection:", zap.Error(err))
	}

	// بستن اتصال دیتابیس
	sqlDB, err := config.DB.DB() // گرفتن *sql.DB از *gorm.DB
	if err != nil {
		logger.Error("Error getting raw DB:", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection:", zap.Error(err))
	}
}
