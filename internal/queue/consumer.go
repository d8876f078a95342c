package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"TimedIn/internal/cache"
	"TimedIn/internal/model"
	"TimedIn/internal/service"
	"TimedIn/pkg/errors"
	"TimedIn/pkg/logger"
	"TimedIn/storage/mq"
)

// StartSweepConsumer 启动收班巡检消费者
func StartSweepConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.SweepRequestMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal sweep request message: %w", err)
		}

		// 【幂等性检查】SETNX 原子性地检查并标记消息正在处理
		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败时继续处理，宁可重复也不丢
		} else if !processed {
			logger.Logger.Info("Message already processed or being processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.String("batch_id", msg.BatchID),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing sweep request",
			zap.String("message_id", msg.MessageID),
			zap.String("batch_id", msg.BatchID),
			zap.String("sweep_date", msg.SweepDate),
		)

		marked, err := service.Sweep().ProcessSweep(ctx, msg)
		if err != nil {
			// 处理失败，取消标记，允许重试
			if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Warn("Failed to unmark message processing",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return fmt.Errorf("failed to process sweep request: %w", err)
		}

		logger.Logger.Info("Sweep request processed",
			zap.String("message_id", msg.MessageID),
			zap.String("sweep_date", msg.SweepDate),
			zap.Int("marked", marked),
		)

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         "scheduler.attendance.sweep",
		ConsumerTag:   "attendance_sweep_consumer",
		PrefetchCount: 1, // 巡检按天串行处理
		Handler:       handler,
	})
}

// StartSMSNotificationConsumer 启动主管缺卡提醒消费者
func StartSMSNotificationConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.MissingTimeOutAlertMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal missing time-out alert message: %w", err)
		}

		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !processed {
			logger.Logger.Info("Message already processed or being processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.Int64("user_id", msg.UserID),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing missing time-out alert",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.String("sweep_date", msg.SweepDate),
		)

		if err := service.Notification().SendMissingTimeOutAlert(ctx, msg); err != nil {
			if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Warn("Failed to unmark message processing",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return fmt.Errorf("failed to send missing time-out alert: %w", err)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         "notification.sms",
		ConsumerTag:   "sms_notification_consumer",
		PrefetchCount: 20,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者（worker 启动时调用），阻塞直到全部退出
func StartAllConsumers(ctx context.Context) {
	// 巡检服务通过注入的发布函数投递提醒，避免 service 反向依赖 queue
	service.Sweep().SetAlertPublisher(PublishMissingTimeOutAlert)

	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"attendance_sweep", StartSweepConsumer},
		{"sms_notification", StartSMSNotificationConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()
}
