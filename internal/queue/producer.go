package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"TimedIn/internal/model"
	"TimedIn/pkg/logger"
	"TimedIn/pkg/snowflake"
	"TimedIn/storage/mq"
)

// PublishSweepRequest 发布收班巡检消息（延迟消息，投递到 SWEEP_AFTER 之后）
func PublishSweepRequest(msg model.SweepRequestMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.String("batch_id", msg.BatchID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("sweep_%d", id)
	}

	delay := time.Duration(msg.DelaySeconds) * time.Second

	// x-delayed-message 插件对超长延迟不可靠，超过一天交回调度器下一轮处理
	if delay > 24*time.Hour {
		return fmt.Errorf("sweep delay %v exceeds 24 hours limit", delay)
	}

	err := mq.PublishDelayedMessage(
		"scheduler.delayed",
		"scheduler.attendance.sweep",
		delay,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish sweep request",
			zap.String("batch_id", msg.BatchID),
			zap.String("sweep_date", msg.SweepDate),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published sweep request",
		zap.String("message_id", msg.MessageID),
		zap.String("batch_id", msg.BatchID),
		zap.String("sweep_date", msg.SweepDate),
		zap.Duration("delay", delay),
	)

	return nil
}

// PublishMissingTimeOutAlert 发布缺卡提醒消息，由短信消费者投递给主管
func PublishMissingTimeOutAlert(msg model.MissingTimeOutAlertMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("user_id", msg.UserID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("mto_alert_%d", id)
	}

	err := mq.PublishMessage(
		"notification.topic",
		"notification.sms.missing_time_out",
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish missing time-out alert",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.String("sweep_date", msg.SweepDate),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published missing time-out alert",
		zap.String("message_id", msg.MessageID),
		zap.Int64("user_id", msg.UserID),
		zap.String("sweep_date", msg.SweepDate),
	)

	return nil
}
