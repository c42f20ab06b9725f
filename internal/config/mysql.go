package config

import (
	"os"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB متغیر برای دسترسی به دیتابیس
var DB *gorm.DB

// InitDB اتصال به دیتابیس MySQL را راه‌اندازی می‌کند.
// رشته‌ی اتصال کامل از DB_DSN خوانده می‌شود.
func InitDB() {
	dsn := os.Getenv("DB_DSN")
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		Logger.Fatal("❌ Error connecting to the database", zap.Error(err))
	}
	DB = db
	Logger.Info("✅ Database connected")
}
