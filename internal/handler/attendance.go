package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"TimedIn/internal/middleware"
	"TimedIn/internal/model/dto"
	"TimedIn/internal/service"
	"TimedIn/pkg/errors"
	"TimedIn/pkg/response"
)

// GetToday 查询当天考勤状态，客户端每次进首页都会拉
// GET /v1/attendance/today
func GetToday(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	status, err := service.Attendance().GetToday(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, status)
}

// ClockIn 上班打卡，要求带定位且在站点围栏内
// POST /v1/attendance/clock-in
func ClockIn(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	var req dto.ClockInRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	status, err := service.Attendance().ClockIn(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, status)
}

// RequestClockOut 下班打卡第一步：返回预览，不落库
// POST /v1/attendance/clock-out/request
func RequestClockOut(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	preview, err := service.Attendance().RequestClockOut(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, preview)
}

// ConfirmClockOut 下班打卡第二步：确认后按确认时刻落库
// POST /v1/attendance/clock-out/confirm
func ConfirmClockOut(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	var req dto.ConfirmClockOutRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}
	if !req.Confirm {
		response.BindError(ctx, c, errors.Definition{Code: "INVALID_REQUEST", Message: "confirm must be true"})
		return
	}

	status, err := service.Attendance().ConfirmClockOut(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, status)
}

// GetHistory 查询考勤历史，最近的在前
// GET /v1/attendance/history?limit=30
func GetHistory(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.BindError(ctx, c, errors.Definition{Code: "INVALID_REQUEST", Message: "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	history, err := service.Attendance().History(ctx, userID, limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, history)
}

// GetWeeklySummary 查询本周汇总
// GET /v1/attendance/summary/weekly
func GetWeeklySummary(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	summary, err := service.Attendance().WeeklySummary(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, summary)
}

// GetProgress 查询累计进度
// GET /v1/attendance/progress
func GetProgress(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	progress, err := service.Attendance().Progress(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, progress)
}

// SaveTodayNote 保存当日工作笔记，一天只许提交一次
// POST /v1/attendance/notes/today
func SaveTodayNote(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	var req dto.NoteRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	note, err := service.Note().SaveTodayNote(ctx, userID, req.Content)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, note)
}

// UpsertCalendarNote 日历入口，覆盖写历史某天的笔记
// PUT /v1/attendance/notes
func UpsertCalendarNote(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	var req dto.CalendarNoteRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	note, err := service.Note().UpsertNoteForDate(ctx, userID, req.Date, req.Content)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, note)
}

// GetNote 查询某天的笔记
// GET /v1/attendance/notes?date=2026-03-02
func GetNote(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthenticated)
		return
	}

	note, err := service.Note().GetNote(ctx, userID, c.Query("date"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, note)
}
