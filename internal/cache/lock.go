package cache

import (
	"context"
	"fmt"
	"time"

	"TimedIn/storage/redis"
)

// 基于 SETNX 的分布式锁，用来串行化同一用户的打卡写入

const (
	lockPrefix   = "lock"
	clockLockTTL = 10 * time.Second
)

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, err
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}

// TryClockLock 获取某用户某天的打卡写锁
func TryClockLock(ctx context.Context, userID int64, date string) (bool, error) {
	return TryLock(ctx, fmt.Sprintf("clock:%d:%s", userID, date), clockLockTTL)
}

// UnlockClock 释放打卡写锁
func UnlockClock(ctx context.Context, userID int64, date string) error {
	return Unlock(ctx, fmt.Sprintf("clock:%d:%s", userID, date))
}
