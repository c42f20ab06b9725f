package user

import (
	"time"

	"github.com/gofrs/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"primary_key;type:char(36);default:uuid()"`
	Email    string    `gorm:"unique;not null"`
	Username string    `gorm:"unique;not null"`
	Password string    `gorm:"not null"`

	// توکن‌های توییتر (از مسیر OAuth پر می‌شوند)
	TwitterUserID       string     `gorm:"type:varchar(64);index"`
	TwitterAccessToken  string     `gorm:"type:text"`
	TwitterRefreshToken string     `gorm:"type:text"`
	TokenExpiresAt      *time.Time `gorm:""`

	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`
}

// Credentials توکن‌های لازم برای ارسال به توییتر
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// HasAccessToken چک می‌کند کاربر اتصال فعال توییتر دارد یا نه
func (c Credentials) HasAccessToken() bool {
	return c.AccessToken != ""
}

// Expired انقضای توکن نسبت به زمان داده‌شده
func (c Credentials) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}
