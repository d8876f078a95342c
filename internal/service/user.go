package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"TimedIn/config"
	"TimedIn/internal/model/dto"
	"TimedIn/internal/repository"
	"TimedIn/pkg/errors"
	"TimedIn/pkg/logger"
)

type UserService struct {
	users repository.UserRepository
}

var (
	userService *UserService
	userOnce    sync.Once
)

func User() *UserService {
	userOnce.Do(func() {
		userService = &UserService{
			users: repository.NewUserRepository(nil),
		}
	})
	return userService
}

func newUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetProfile 获取当前用户资料
func (s *UserService) GetProfile(ctx context.Context, publicID int64) (*dto.ProfileData, error) {
	user, err := s.users.GetByPublicID(ctx, publicID)
	if err != nil {
		logger.Logger.Error("Failed to query user",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}
	if user == nil {
		return nil, errors.UserNotFound
	}

	return &dto.ProfileData{
		UserID:      user.PublicID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        string(user.Role),
		Timezone:    user.Timezone,
		TargetHours: user.TargetHours(config.Cfg.TargetHours),
	}, nil
}

// UpdateProfile 更新资料，只动请求里带的字段
func (s *UserService) UpdateProfile(ctx context.Context, publicID int64, req dto.UpdateProfileRequest) (*dto.ProfileData, error) {
	user, err := s.users.GetByPublicID(ctx, publicID)
	if err != nil {
		logger.Logger.Error("Failed to query user",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}
	if user == nil {
		return nil, errors.UserNotFound
	}

	fields := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		fields["name"] = *req.Name
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, errors.InvalidTimezone
		}
		fields["timezone"] = *req.Timezone
	}
	if req.AlertPhone != nil {
		fields["alert_phone"] = *req.AlertPhone
	}

	if len(fields) == 0 {
		return s.GetProfile(ctx, publicID)
	}

	if err := s.users.UpdateFields(ctx, user.ID, fields); err != nil {
		logger.Logger.Error("Failed to update user profile",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
		return nil, errors.StoreWriteFailed
	}

	logger.Logger.Info("User profile updated",
		zap.Int64("user_id", publicID),
	)

	return s.GetProfile(ctx, publicID)
}
