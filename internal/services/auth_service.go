package services

import (
	"context"
	"errors"

	"backend/internal/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

type AuthService struct {
	userRepo  *repositories.UserRepository
	redisRepo *repositories.RedisRepository
}

func NewAuthService(userRepo *repositories.UserRepository, redisRepo *repositories.RedisRepository) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		redisRepo: redisRepo,
	}
}

func (s *AuthService) Register(ctx context.Context, user *models.User) (string, string, error) {
	// 1. Check if user already exists
	existing, _ := s.userRepo.FindUserByEmail(ctx, user.Email)
	if existing != nil {
		return "", "", errors.New("user already exists")
	}

	// 2. Hash password before saving
	if user.Password == "" {
		return "", "", errors.New("password is required")
	}
	hashedPassword, err := utils.Hash(user.Password)
	if err != nil {
		return "", "", err
	}
	user.PasswordHash = string(hashedPassword)
	user.Password = ""

	// 3. Save user in DB
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", "", err
	}

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil || user == nil {
		return "", "", errors.New("user not found")
	}

	if err := utils.VerifyPassword(user.PasswordHash, password); err != nil {
		return "", "", errors.New("invalid password")
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		return "", "", err
	}

	return s.issueTokens(ctx, user)
}

// Refresh validates the refresh token, checks the jti is neither
// blacklisted nor logged out, and rotates the pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := utils.VerifyJWT(refreshToken, utils.RefreshTokenSecret)
	if err != nil {
		return "", "", errors.New("invalid or expired refresh token")
	}

	blacklisted, err := s.redisRepo.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return "", "", err
	}
	if blacklisted {
		return "", "", errors.New("refresh token revoked")
	}

	user, err := s.userRepo.FindUserByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return "", "", errors.New("user not found")
	}

	// Rotation: old jti dies with the new issue.
	if err := s.redisRepo.Blacklist(ctx, claims.ID); err != nil {
		return "", "", err
	}
	_ = s.redisRepo.DeleteSession(ctx, claims.ID)

	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := utils.VerifyJWT(refreshToken, utils.RefreshTokenSecret)
	if err != nil {
		return errors.New("invalid refresh token")
	}
	if err := s.redisRepo.Blacklist(ctx, claims.ID); err != nil {
		return err
	}
	return s.redisRepo.DeleteSession(ctx, claims.ID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (string, string, error) {
	accessToken, refreshToken, jti, err := utils.GenerateTokens(user.ID)
	if err != nil {
		return "", "", err
	}
	if err := s.redisRepo.StoreSession(ctx, jti, user.ID.String()); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}
