package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"TimedIn/config"
	"TimedIn/internal/model"
	"TimedIn/internal/repository"
	"TimedIn/pkg/logger"
	"TimedIn/pkg/metrics"
	"TimedIn/pkg/sms"
)

// NotificationService 把缺卡提醒发给配置了告警手机号的带教主管
type NotificationService struct {
	users  repository.UserRepository
	sender sms.Client
}

var (
	notificationService *NotificationService
	notificationOnce    sync.Once
)

func Notification() *NotificationService {
	notificationOnce.Do(func() {
		notificationService = &NotificationService{
			users:  repository.NewUserRepository(nil),
			sender: sms.GetClient(),
		}
	})
	return notificationService
}

func newNotificationService(users repository.UserRepository, sender sms.Client) *NotificationService {
	return &NotificationService{users: users, sender: sender}
}

// SendMissingTimeOutAlert 给所有可达的主管发送某个实训生的缺卡提醒
// 单个主管发送失败只记日志，不影响其他主管
func (s *NotificationService) SendMissingTimeOutAlert(ctx context.Context, msg model.MissingTimeOutAlertMessage) error {
	heads, err := s.users.ListByRole(ctx, model.UserRoleHead)
	if err != nil {
		return err
	}

	param, err := json.Marshal(map[string]string{
		"trainee": msg.TraineeName,
		"date":    msg.SweepDate,
		"time_in": msg.TimeIn,
	})
	if err != nil {
		return err
	}

	sent := 0
	for _, head := range heads {
		if head.AlertPhone == nil || *head.AlertPhone == "" {
			continue
		}

		err := s.sender.SendSingle(ctx,
			*head.AlertPhone,
			config.Cfg.SMSSignName,
			config.Cfg.SMSTemplateCode,
			string(param),
		)
		metrics.RecordSMSSent(ctx, config.Cfg.SMSProvider, err == nil)
		if err != nil {
			logger.Logger.Error("Failed to send missing time-out alert",
				zap.Int64("head_id", head.PublicID),
				zap.Int64("trainee_id", msg.UserID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	if sent > 0 {
		metrics.RecordSweepAlertSent(ctx)
	}

	logger.Logger.Info("Missing time-out alert processed",
		zap.Int64("trainee_id", msg.UserID),
		zap.String("sweep_date", msg.SweepDate),
		zap.Int("heads_notified", sent),
	)

	return nil
}
