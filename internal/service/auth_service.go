package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService authenticates users and maintains their session rows
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*model.User, *TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, actor *model.User, refreshToken string) error
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) AuthService {
	return &authService{userRepo: userRepo, sessionRepo: sessionRepo}
}

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key" // development fallback, never use in production
	}
	return []byte(secret)
}

func signAccessToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString(jwtSecret())
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*model.User, *TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokenString, err := signAccessToken(user)
	if err != nil {
		return nil, nil, errors.New("failed to generate token")
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.userRepo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, nil, err
	}

	// Open a session row alongside the tokens
	session := &model.Session{UserID: user.ID, Active: true}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, nil, err
	}

	return user, &TokenResponse{Token: tokenString, RefreshToken: refresh.Token}, nil
}

func (s *authService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	stored, err := s.userRepo.GetRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.userRepo.DeleteRefreshToken(ctx, stored.Token)
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	tokenString, err := signAccessToken(user)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	// Rotate the refresh token on every use
	if err := s.userRepo.DeleteRefreshToken(ctx, stored.Token); err != nil {
		return nil, err
	}
	next := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.userRepo.CreateRefreshToken(ctx, next); err != nil {
		return nil, err
	}

	return &TokenResponse{Token: tokenString, RefreshToken: next.Token}, nil
}

func (s *authService) Logout(ctx context.Context, actor *model.User, refreshToken string) error {
	if refreshToken != "" {
		_ = s.userRepo.DeleteRefreshToken(ctx, refreshToken)
	} else {
		_ = s.userRepo.DeleteRefreshTokensForUser(ctx, actor.ID)
	}
	return s.sessionRepo.CloseOpenForUser(ctx, actor.ID, time.Now())
}
