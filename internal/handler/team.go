package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"TimedIn/internal/middleware"
	"TimedIn/internal/service"
	"TimedIn/pkg/errors"
	"TimedIn/pkg/response"
)

// GetTeamOverview 带教主管的团队当日视图
// GET /v1/team/overview?date=2026-03-02（缺省为今天）
func GetTeamOverview(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	overview, err := service.Team().Overview(ctx, userID, c.Query("date"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, overview)
}
