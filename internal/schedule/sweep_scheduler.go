package schedule

// 收班巡检调度器：每天把当天的巡检消息投进延迟队列
// 消息在 SWEEP_AFTER 之后到期，由 worker 扫描缺少 time_out 的记录

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"TimedIn/config"
	"TimedIn/internal/cache"
	"TimedIn/internal/model"
	"TimedIn/internal/queue"
	"TimedIn/pkg/logger"
	"TimedIn/utils"
)

var (
	sweepSchedulerOnce sync.Once
	sweepSchedulerInst *SweepScheduler
)

type SweepScheduler struct {
	logger       *zap.Logger
	jobRunning   bool
	jobMu        sync.Mutex
	lastSweepJob time.Time
}

func GetSweepScheduler() *SweepScheduler {
	sweepSchedulerOnce.Do(func() {
		sweepSchedulerInst = &SweepScheduler{
			logger: logger.Logger,
		}
	})
	return sweepSchedulerInst
}

// ScheduleDailySweep 投放当天的巡检消息（定时任务调用，可安全重入）
// Redis SETNX 标记保证跨进程、跨重启同一天只投放一次
func (s *SweepScheduler) ScheduleDailySweep(ctx context.Context) error {
	s.jobMu.Lock()
	if s.jobRunning {
		s.jobMu.Unlock()
		s.logger.Info("Sweep scheduling job already running, skipping")
		return nil
	}
	s.jobRunning = true
	s.jobMu.Unlock()

	defer func() {
		s.jobMu.Lock()
		s.jobRunning = false
		s.jobMu.Unlock()
	}()

	startTime := time.Now()
	s.lastSweepJob = startTime

	loc, err := time.LoadLocation(config.Cfg.DefaultTimezone)
	if err != nil {
		loc = time.Local
	}

	now := startTime.In(loc)
	dateKey := utils.DateKey(now)

	delay, err := s.sweepDelay(now, loc)
	if err != nil {
		return err
	}

	scheduled, err := cache.TryMarkSweepScheduled(ctx, dateKey)
	if err != nil {
		s.logger.Error("Failed to check sweep scheduled status",
			zap.String("sweep_date", dateKey),
			zap.Error(err),
		)
		return fmt.Errorf("failed to check sweep scheduled status: %w", err)
	}
	if !scheduled {
		s.logger.Info("Sweep already scheduled for date, skipping",
			zap.String("sweep_date", dateKey),
		)
		return nil
	}

	msg := model.SweepRequestMessage{
		BatchID:      uuid.NewString(),
		SweepDate:    dateKey,
		ScheduledAt:  now.Format(time.RFC3339),
		DelaySeconds: int(delay.Seconds()) + config.Cfg.SweepDelaySecs,
	}

	if err := queue.PublishSweepRequest(msg); err != nil {
		// 投放失败要清掉标记，下一轮重试
		if unmarkErr := cache.UnmarkSweepScheduled(ctx, dateKey); unmarkErr != nil {
			s.logger.Error("Failed to unmark sweep scheduled",
				zap.String("sweep_date", dateKey),
				zap.Error(unmarkErr),
			)
		}
		return fmt.Errorf("failed to publish sweep request: %w", err)
	}

	s.logger.Info("Daily sweep scheduled",
		zap.String("sweep_date", dateKey),
		zap.String("batch_id", msg.BatchID),
		zap.Duration("delay", delay),
	)

	return nil
}

// sweepDelay 计算距当天 SWEEP_AFTER 的延迟，已过点则立即投放
func (s *SweepScheduler) sweepDelay(now time.Time, loc *time.Location) (time.Duration, error) {
	target, ok := utils.CombineDateTime(utils.DateKey(now), config.Cfg.SweepAfter, loc)
	if !ok {
		return 0, fmt.Errorf("invalid SWEEP_AFTER value: %q", config.Cfg.SweepAfter)
	}

	delay := target.Sub(now)
	if delay < 0 {
		delay = 0
	}
	return delay, nil
}

// Run 周期性调度，直到 ctx 取消
func (s *SweepScheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 启动时立即跑一轮，覆盖进程在 SWEEP_AFTER 附近重启的情况
	if err := s.ScheduleDailySweep(ctx); err != nil {
		s.logger.Error("Sweep scheduling failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweep scheduler stopped")
			return
		case <-ticker.C:
			if err := s.ScheduleDailySweep(ctx); err != nil {
				s.logger.Error("Sweep scheduling failed", zap.Error(err))
			}
		}
	}
}
