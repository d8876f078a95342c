package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"TimedIn/internal/model/dto"
	"TimedIn/storage/redis"
)

// 今日打卡状态缓存，打卡写入后主动失效
// TTL 较短，避免跨天或后台巡检改写后读到陈旧状态

const (
	todayStatusPrefix = "attendance:today"
	todayStatusTTL    = 60 * time.Second
)

func todayStatusKey(userID int64, date string) string {
	return redis.Key(todayStatusPrefix, fmt.Sprintf("%d", userID), date)
}

// GetTodayStatus 读取今日状态缓存，未命中返回 (nil, nil)
func GetTodayStatus(ctx context.Context, userID int64, date string) (*dto.TodayStatusData, error) {
	data, err := redis.Client().Get(ctx, todayStatusKey(userID, date)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get today status cache: %w", err)
	}

	var status dto.TodayStatusData
	if err := json.Unmarshal(data, &status); err != nil {
		// 缓存内容损坏时当作未命中处理
		return nil, nil
	}
	return &status, nil
}

// SetTodayStatus 写入今日状态缓存
func SetTodayStatus(ctx context.Context, userID int64, date string, status *dto.TodayStatusData) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal today status: %w", err)
	}

	return redis.Client().Set(ctx, todayStatusKey(userID, date), data, todayStatusTTL).Err()
}

// InvalidateTodayStatus 打卡或写笔记后主动失效缓存
func InvalidateTodayStatus(ctx context.Context, userID int64, date string) error {
	return redis.Client().Del(ctx, todayStatusKey(userID, date)).Err()
}
