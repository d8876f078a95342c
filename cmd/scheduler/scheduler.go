package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"TimedIn/config"
	"TimedIn/internal/schedule"
	"TimedIn/pkg/logger"
	"TimedIn/pkg/snowflake"
	"TimedIn/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 巡检消息的 MessageID 依赖雪花 ID
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 每 15 分钟检查一次当天的巡检是否已排期；Redis 标记保证同一天只投递一次，
	// 因此巡检进程多开或重启也不会产生重复的巡检消息
	interval := 15 * time.Minute
	if config.Cfg.IsDevelopment() {
		interval = 1 * time.Minute
		logger.Logger.Info("Sweep scheduler running in development mode with 1m interval")
	}

	schedule.GetSweepScheduler().Run(ctx, interval)

	logger.Logger.Info("Scheduler service shutting down gracefully")
}
