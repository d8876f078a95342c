package cache

import (
	"context"
	"fmt"
	"time"

	"TimedIn/storage/redis"
)

// 巡检调度标记，保证同一天的漏打卡巡检只投放一次

const (
	sweepScheduledPrefix = "sweep:scheduled"
	sweepScheduledTTL    = 36 * time.Hour
)

// TryMarkSweepScheduled 标记某天的巡检已投放，已存在时返回 false
func TryMarkSweepScheduled(ctx context.Context, date string) (bool, error) {
	key := redis.Key(sweepScheduledPrefix, date)

	result, err := redis.Client().SetNX(ctx, key, "1", sweepScheduledTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark sweep scheduled: %w", err)
	}
	return result, nil
}

// UnmarkSweepScheduled 清除巡检标记（投放失败时调用，允许重试）
func UnmarkSweepScheduled(ctx context.Context, date string) error {
	key := redis.Key(sweepScheduledPrefix, date)
	return redis.Client().Del(ctx, key).Err()
}
