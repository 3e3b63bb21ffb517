package services

import (
	"context"
	"errors"

	"backend/internal/models"
	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/google/uuid"
)

type UserService struct {
	userRepo *repositories.UserRepository
}

func NewUserService(userRepo *repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}
	if err := utils.VerifyPassword(user.PasswordHash, current); err != nil {
		return errors.New("invalid password")
	}
	if next == "" {
		return errors.New("new password is required")
	}

	hashed, err := utils.Hash(next)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePasswordHash(ctx, id, string(hashed))
}
