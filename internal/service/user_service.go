package service

import (
	"context"
	"errors"
	"strings"

	"campusfeed/internal/cache"
	"campusfeed/internal/models"
	"campusfeed/internal/repository"

	"gorm.io/gorm"
)

// UserService implements profile reads and edits.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries profile edits. Pointer fields distinguish "not
// sent" (nil) from "clear this attribute" (pointer to empty string).
type UpdateProfileInput struct {
	UserID    uint
	Name      *string
	AvatarURL *string
	Batch     *string
	Campus    *string
	Branch    *string
}

// NewUserService creates a UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User", userID)
	}
	return user, err
}

// UpdateProfile applies the provided fields and invalidates the cached
// profile so the next feed request sees fresh audience attributes.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("User", in.UserID)
	}
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
		user.Name = name
	}
	if in.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if in.Batch != nil {
		user.Batch = normalizeProfileAttr(*in.Batch)
	}
	if in.Campus != nil {
		user.Campus = normalizeProfileAttr(*in.Campus)
	}
	if in.Branch != nil {
		user.Branch = normalizeProfileAttr(*in.Branch)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	cache.InvalidateProfile(ctx, in.UserID)
	return user, nil
}

// normalizeProfileAttr stores blank values as NULL so the audience predicate
// treats them as absent on both evaluation paths.
func normalizeProfileAttr(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
