package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"chakavak/internal/adapters/httpapi/middleware"
	"chakavak/internal/core/dispatch"
	settingsapp "chakavak/internal/core/settings/service"
	queuePort "chakavak/internal/ports/queue"
	settingsPort "chakavak/internal/ports/settings"
	userPort "chakavak/internal/ports/user"
)

// UserUseCase: اینترفیسِ لازم برای کنترلر/روتر (Inbound Port)
type UserUseCase interface {
	LoginUser(ctx context.Context, username, password string) (*userPort.LoginResponse, error)
	RegisterUser(ctx context.Context, email, username, password string) (*userPort.UserDTO, error)
	GetProfile(ctx context.Context, userID string) (*userPort.UserDTO, error)
}

type QueueUseCase interface {
	Enqueue(ctx context.Context, userID, content, mediaURL string, scheduledAt time.Time) (*queuePort.TweetDTO, error)
	EnqueueBulk(ctx context.Context, userID string, contents []string) (int, error)
	List(ctx context.Context, userID string) ([]*queuePort.TweetDTO, error)
	Update(ctx context.Context, userID, tweetID string, content *string, mediaURL *string, scheduledAt *time.Time) error
	Delete(ctx context.Context, userID, tweetID string) error
}

type SettingsUseCase interface {
	Get(ctx context.Context, userID string) (*settingsPort.SettingsDTO, error)
	Update(ctx context.Context, userID string, in settingsapp.UpdateInput) (*settingsPort.SettingsDTO, error)
}

type DispatchUseCase interface {
	RunCycle(ctx context.Context) (*dispatch.CycleSummary, error)
}

// فقط روتینگ: UseCase از بیرون تزریق می‌شود
func SetupRoutes(
	userUC UserUseCase,
	queueUC QueueUseCase,
	settingsUC SettingsUseCase,
	dispatchUC DispatchUseCase,
	jwtSecret []byte,
	cronSecret string,
) *gin.Engine {
	r := gin.Default()
	uc := NewUserController(userUC)
	qc := NewQueueController(queueUC)
	sc := NewSettingsController(settingsUC)
	dc := NewDispatchController(dispatchUC)

	// مسیرهای ثبت‌نام و ورود بدون JWT Middleware
	r.POST("/register", uc.RegisterUser)
	r.POST("/login", uc.LoginUser)

	// مسیرهای صف توییت با JWT Middleware
	auth := middleware.JWTAuthMiddleware(jwtSecret)
	r.GET("/me", auth, uc.GetProfile)
	r.POST("/tweets", auth, qc.CreateTweet)
	r.POST("/tweets/bulk", auth, qc.CreateBulkTweets)
	r.GET("/tweets", auth, qc.ListTweets)
	r.PATCH("/tweets/:id", auth, qc.UpdateTweet)
	r.DELETE("/tweets/:id", auth, qc.DeleteTweet)

	// تنظیمات ارسال خودکار
	r.GET("/settings/posting", auth, sc.GetSettings)
	r.PUT("/settings/posting", auth, sc.UpdateSettings)

	// trigger بیرونی dispatch با secret جداگانه
	r.GET("/cron/dispatch", middleware.CronSecretMiddleware(cronSecret), dc.RunDispatch)

	return r
}
