package user

import (
	"chakavak/internal/core/user"
)

// UserRepository پورت برای ذخیره‌سازی و بازیابی کاربران
type UserRepository interface {
	Create(u *user.User) (*user.User, error)
	FindByID(id string) (*user.User, error)
	FindByUsername(username string) (*user.User, error)
	FindByEmailOrUsername(email, username string) (*user.User, error)
	GetCredentials(userID string) (*user.Credentials, error)
	UpdateTwitterTokens(userID string, creds *user.Credentials) error
}

// DTOها برای UseCase
type UserDTO struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Username         string `json:"username"`
	TwitterConnected bool   `json:"twitter_connected"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
