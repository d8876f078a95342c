package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"TimedIn/internal/handler"
	"TimedIn/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())
	for _, mw := range middleware.CSRFMiddlewares() {
		h.Use(mw)
	}

	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware())
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.POST("/token/refresh", handler.RefreshToken)
		auth.POST("/logout", middleware.AuthMiddleware(), handler.Logout)
	}

	// 用户相关路由
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware())
	users.Use(middleware.GeneralRateLimitMiddleware())
	{
		users.GET("/me", handler.GetProfile)
		users.PATCH("/me", handler.UpdateProfile)
	}

	// 考勤路由
	attendance := v1.Group("/attendance")
	attendance.Use(middleware.AuthMiddleware())
	attendance.Use(middleware.GeneralRateLimitMiddleware())
	{
		attendance.GET("/today", handler.GetToday)
		attendance.POST("/clock-in", middleware.ClockRateLimitMiddleware(), handler.ClockIn)
		attendance.POST("/clock-out/request", middleware.ClockRateLimitMiddleware(), handler.RequestClockOut)
		attendance.POST("/clock-out/confirm", middleware.ClockRateLimitMiddleware(), handler.ConfirmClockOut)
		attendance.GET("/history", handler.GetHistory)
		attendance.GET("/summary/weekly", handler.GetWeeklySummary)
		attendance.GET("/progress", handler.GetProgress)

		attendance.POST("/notes/today", handler.SaveTodayNote)
		attendance.PUT("/notes", handler.UpsertCalendarNote)
		attendance.GET("/notes", handler.GetNote)
	}

	// 带教主管团队视图
	team := v1.Group("/team")
	team.Use(middleware.AuthMiddleware())
	team.Use(middleware.GeneralRateLimitMiddleware())
	{
		team.GET("/overview", handler.GetTeamOverview)
	}
}
