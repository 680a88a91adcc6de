package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/abaila/abaila/internal/models"
	"github.com/abaila/abaila/internal/storage"
)

var ErrProfileConflict = errors.New("email or username already in use")

type ProfileService struct {
	users    storage.UserRepository
	validate *validator.Validate
}

func NewProfileService(users storage.UserRepository) *ProfileService {
	return &ProfileService{users: users, validate: validator.New()}
}

func (s *ProfileService) Get(ctx context.Context, userID int64) (*models.ProfileResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.ProfileResponse{
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

func (s *ProfileService) Update(ctx context.Context, userID int64, req models.ProfileUpdateRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if err := s.users.UpdateProfile(ctx, userID, req.Email, req.Username); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return ErrProfileConflict
		}
		return err
	}
	return nil
}
