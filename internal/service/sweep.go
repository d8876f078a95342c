package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"TimedIn/config"
	"TimedIn/internal/model"
	"TimedIn/internal/repository"
	"TimedIn/pkg/logger"
	"TimedIn/pkg/metrics"
	"TimedIn/utils"
)

// AlertPublisher 发布缺卡提醒消息，由 worker 启动时注入，避免 service 与 queue 互相依赖
type AlertPublisher func(msg model.MissingTimeOutAlertMessage) error

type SweepService struct {
	repo         repository.AttendanceRepository
	users        repository.UserRepository
	publishAlert AlertPublisher
	now          func() time.Time
}

var (
	sweepService *SweepService
	sweepOnce    sync.Once
)

func Sweep() *SweepService {
	sweepOnce.Do(func() {
		sweepService = &SweepService{
			repo:  repository.NewAttendanceRepository(nil),
			users: repository.NewUserRepository(nil),
			now:   time.Now,
		}
	})
	return sweepService
}

func newSweepService(
	repo repository.AttendanceRepository,
	users repository.UserRepository,
	publishAlert AlertPublisher,
	now func() time.Time,
) *SweepService {
	return &SweepService{repo: repo, users: users, publishAlert: publishAlert, now: now}
}

// SetAlertPublisher 注入提醒消息发布函数（worker 启动时调用）
func (s *SweepService) SetAlertPublisher(p AlertPublisher) {
	s.publishAlert = p
}

// ProcessSweep 收班巡检：把当天已上班未下班的记录工时记为 0，并逐条投递提醒
// 只补 total_hours 不补 time_out，残缺片段留给人工修正
func (s *SweepService) ProcessSweep(ctx context.Context, msg model.SweepRequestMessage) (int, error) {
	loc, err := time.LoadLocation(config.Cfg.DefaultTimezone)
	if err != nil {
		loc = time.Local
	}

	date, ok := utils.ParseDateKey(msg.SweepDate, loc)
	if !ok {
		return 0, fmt.Errorf("invalid sweep date: %q", msg.SweepDate)
	}

	logs, err := s.repo.ListMissingTimeOut(ctx, date, config.Cfg.SweepBatchLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list missing time-out records: %w", err)
	}

	if len(logs) == 0 {
		logger.Logger.Info("Sweep found no missing time-out records",
			zap.String("sweep_date", msg.SweepDate),
			zap.String("batch_id", msg.BatchID),
		)
		metrics.RecordSweepRun(ctx, 0)
		return 0, nil
	}

	userIDs := make([]int64, 0, len(logs))
	for _, log := range logs {
		userIDs = append(userIDs, log.UserID)
	}
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load swept users: %w", err)
	}
	byID := make(map[int64]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	marked := 0
	for _, log := range logs {
		zero := 0.0
		update := &model.AttendanceLog{
			UserID:     log.UserID,
			Date:       log.Date,
			TimeIn:     log.TimeIn,
			TotalHours: &zero,
		}

		if err := s.repo.Upsert(ctx, update, []string{"total_hours"}); err != nil {
			logger.Logger.Error("Failed to mark missing time-out record",
				zap.Int64("user_id", log.UserID),
				zap.String("date", log.DateKey()),
				zap.Error(err),
			)
			continue
		}
		marked++

		user := byID[log.UserID]
		if user == nil || s.publishAlert == nil {
			continue
		}

		alert := model.MissingTimeOutAlertMessage{
			BatchID:   msg.BatchID,
			SweepDate: msg.SweepDate,
			UserID:    user.PublicID,
		}
		alert.TraineeName = user.Name
		if log.TimeIn != nil {
			alert.TimeIn = *log.TimeIn
		}

		if err := s.publishAlert(alert); err != nil {
			logger.Logger.Error("Failed to publish missing time-out alert",
				zap.Int64("user_id", user.PublicID),
				zap.String("sweep_date", msg.SweepDate),
				zap.Error(err),
			)
		}
	}

	metrics.RecordSweepRun(ctx, marked)
	logger.Logger.Info("Sweep completed",
		zap.String("sweep_date", msg.SweepDate),
		zap.String("batch_id", msg.BatchID),
		zap.Int("found", len(logs)),
		zap.Int("marked", marked),
	)

	return marked, nil
}
