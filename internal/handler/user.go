package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"TimedIn/internal/middleware"
	"TimedIn/internal/model/dto"
	"TimedIn/internal/service"
	"TimedIn/pkg/errors"
	"TimedIn/pkg/response"
)

// GetProfile 获取当前用户资料
// GET /v1/users/me
func GetProfile(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	profile, err := service.User().GetProfile(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, profile)
}

// UpdateProfile 更新当前用户资料（部分字段）
// PATCH /v1/users/me
func UpdateProfile(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	profile, err := service.User().UpdateProfile(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, profile)
}
