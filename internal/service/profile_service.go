package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ozcanhakn/kanban-app/internal/repository"
)

// ProfileService reads and completes the caller's profile.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uint) (*UserResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*UserResponse, error)
}

type profileService struct {
	base
}

func NewProfileService(repos *repository.Repositories, log *zap.Logger) ProfileService {
	return &profileService{base: newBase(repos, nil, log.Named("profile"))}
}

func (s *profileService) GetProfile(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.lookup(err, "user", userID)
	}
	resp := toUserResponse(*user)
	return &resp, nil
}

// UpdateProfile applies the given fields. A profile counts as completed once
// it has a full name.
func (s *profileService) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.lookup(err, "user", userID)
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", ErrInvalidInput)
		}
		user.FullName = name
	}
	if req.AvatarURL != nil {
		avatar := strings.TrimSpace(*req.AvatarURL)
		if avatar != "" {
			u, err := url.Parse(avatar)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, fmt.Errorf("%w: avatar_url must be an http(s) URL", ErrInvalidInput)
			}
		}
		user.AvatarURL = avatar
	}
	if user.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	user.ProfileCompleted = true

	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, s.internal(err, "update profile", zap.Uint("user_id", userID))
	}
	resp := toUserResponse(*user)
	return &resp, nil
}
