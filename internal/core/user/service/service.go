package userapp

import (
	"context"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"

	userEntity "chakavak/internal/core/user"
	userPort "chakavak/internal/ports/user"
)

// UserService سرویس مدیریت کاربران
type UserService struct {
	UserRepository userPort.UserRepository
	jwtKey         []byte
}

func NewUserService(repo userPort.UserRepository, jwtKey []byte) *UserService {
	return &UserService{
		UserRepository: repo,
		jwtKey:         jwtKey,
	}
}

// LoginUser ورود کاربر و صدور توکن JWT
func (s *UserService) LoginUser(ctx context.Context, username string, password string) (*userPort.LoginResponse, error) {
	// پیدا کردن کاربر با یوزرنیم
	u, err := s.UserRepository.FindByUsername(username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	// مقایسه پسورد هش‌شده
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	token, err := s.generateJWT(u, expiresAt)
	if err != nil {
		return nil, errors.New("could not generate token")
	}

	return &userPort.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// generateJWT برای تولید توکن JWT
func (s *UserService) generateJWT(u *userEntity.User, expiresAt time.Time) (string, error) {
	claims := &jwt.StandardClaims{
		Subject:   u.ID.String(),
		Issuer:    "chakavak",
		ExpiresAt: expiresAt.Unix(),
		IssuedAt:  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// RegisterUser ثبت‌نام کاربر جدید
func (s *UserService) RegisterUser(ctx context.Context, email, username, password string) (*userPort.UserDTO, error) {
	// بررسی اینکه آیا کاربر با این ایمیل یا یوزرنیم قبلاً ثبت شده است
	existingUser, err := s.UserRepository.FindByEmailOrUsername(email, username)
	if err == nil && existingUser != nil {
		return nil, errors.New("email or username already taken")
	}

	// هش کردن پسورد
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &userEntity.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    email,
		Username: username,
		Password: string(hashedPassword),
	}

	created, err := s.UserRepository.Create(u)
	if err != nil {
		return nil, err
	}

	return &userPort.UserDTO{
		ID:       created.ID.String(),
		Email:    created.Email,
		Username: created.Username,
	}, nil
}

// GetProfile اطلاعات کاربر برای داشبورد
func (s *UserService) GetProfile(ctx context.Context, userID string) (*userPort.UserDTO, error) {
	u, err := s.UserRepository.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return &userPort.UserDTO{
		ID:               u.ID.String(),
		Email:            u.Email,
		Username:         u.Username,
		TwitterConnected: u.TwitterAccessToken != "",
	}, nil
}
