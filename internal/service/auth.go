package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"TimedIn/config"
	"TimedIn/internal/cache"
	"TimedIn/internal/model"
	"TimedIn/internal/model/dto"
	"TimedIn/internal/repository"
	"TimedIn/pkg/errors"
	"TimedIn/pkg/logger"
	"TimedIn/pkg/snowflake"
	"TimedIn/pkg/token"
	"TimedIn/utils"
)

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{
			users: repository.NewUserRepository(nil),
		}
	})
	return authService
}

type AuthService struct {
	users repository.UserRepository
}

func newAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register 邮箱注册，成功后直接发 token 对
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenPairData, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.ValidateEmail(email) || len(req.Password) < 8 {
		return nil, errors.InvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		logger.Logger.Error("Failed to query user by email", zap.Error(err))
		return nil, errors.StoreReadFailed
	}
	if existing != nil {
		return nil, errors.EmailAlreadyRegistered
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	user := &model.User{
		PublicID:     publicID,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         model.UserRoleTrainee,
		Timezone:     config.Cfg.DefaultTimezone,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// 并发注册撞到唯一索引时按已注册处理
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, errors.EmailAlreadyRegistered
		}
		logger.Logger.Error("Failed to create user", zap.Error(err))
		return nil, errors.StoreWriteFailed
	}

	logger.Logger.Info("New user registered",
		zap.Int64("public_id", publicID),
		zap.String("email", email),
	)

	return s.issueTokenPair(ctx, publicID)
}

// Login 邮箱密码登录
// 用户不存在和密码错误返回同一个错误，避免暴露邮箱是否注册
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenPairData, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		logger.Logger.Error("Failed to query user by email", zap.Error(err))
		return nil, errors.StoreReadFailed
	}
	if user == nil {
		return nil, errors.InvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Logger.Info("Login rejected: wrong password",
			zap.Int64("public_id", user.PublicID),
		)
		return nil, errors.InvalidCredentials
	}

	return s.issueTokenPair(ctx, user.PublicID)
}

// RefreshToken 用 refresh token 换新的 token 对
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPairData, error) {
	userIDStr, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthenticated
	}

	// 与 Redis 中存储的副本比对，登出后的旧 token 作废
	if !cache.ValidateRefreshTokenExists(ctx, userIDStr, refreshToken) {
		return nil, errors.Unauthenticated
	}

	publicID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return nil, errors.InvalidUserID
	}

	user, err := s.users.GetByPublicID(ctx, publicID)
	if err != nil {
		logger.Logger.Error("Failed to query user", zap.Error(err))
		return nil, errors.StoreReadFailed
	}
	if user == nil {
		return nil, errors.UserNotFound
	}

	return s.issueTokenPair(ctx, publicID)
}

// Logout 登出，作废 refresh token
func (s *AuthService) Logout(ctx context.Context, publicID int64) error {
	userIDStr := fmt.Sprintf("%d", publicID)
	if err := cache.DeleteRefreshToken(ctx, userIDStr); err != nil {
		logger.Logger.Warn("Failed to delete refresh token",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
	}
	return nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, publicID int64) (*dto.TokenPairData, error) {
	userIDStr := fmt.Sprintf("%d", publicID)
	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := cache.SetRefreshToken(ctx, userIDStr, refreshToken); err != nil {
		logger.Logger.Warn("Failed to store refresh token in Redis",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
		// 不返回错误，因为 token 已经生成成功
	}

	return &dto.TokenPairData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	}, nil
}
