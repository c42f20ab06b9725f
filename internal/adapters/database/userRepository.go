package database

import (
	"gorm.io/gorm"

	"chakavak/internal/core/user"
)

// UserRepositoryDatabase پیاده‌سازی UserRepository برای دیتابیس
type UserRepositoryDatabase struct {
	db *gorm.DB
}

// NewUserRepositoryDatabase سازنده UserRepositoryDatabase
func NewUserRepositoryDatabase(db *gorm.DB) *UserRepositoryDatabase {
	return &UserRepositoryDatabase{db: db}
}

func (repo *UserRepositoryDatabase) Create(u *user.User) (*user.User, error) {
	if err := repo.db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (repo *UserRepositoryDatabase) FindByID(id string) (*user.User, error) {
	var u user.User
	if err := repo.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (repo *UserRepositoryDatabase) FindByUsername(username string) (*user.User, error) {
	var u user.User
	if err := repo.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (repo *UserRepositoryDatabase) FindByEmailOrUsername(email, username string) (*user.User, error) {
	var u user.User
	if err := repo.db.Where("email = ? OR username = ?", email, username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (repo *UserRepositoryDatabase) GetCredentials(userID string) (*user.Credentials, error) {
	u, err := repo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return &user.Credentials{
		AccessToken:  u.TwitterAccessToken,
		RefreshToken: u.TwitterRefreshToken,
		ExpiresAt:    u.TokenExpiresAt,
	}, nil
}

func (repo *UserRepositoryDatabase) UpdateTwitterTokens(userID string, creds *user.Credentials) error {
	return repo.db.Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"twitter_access_token":  creds.AccessToken,
			"twitter_refresh_token": creds.RefreshToken,
			"token_expires_at":      creds.ExpiresAt,
		}).Error
}
