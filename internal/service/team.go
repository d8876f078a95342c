package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"TimedIn/config"
	"TimedIn/internal/model"
	"TimedIn/internal/model/dto"
	"TimedIn/internal/repository"
	"TimedIn/pkg/errors"
	"TimedIn/pkg/logger"
	"TimedIn/utils"
)

type TeamService struct {
	repo  repository.AttendanceRepository
	users repository.UserRepository
	now   func() time.Time
}

var (
	teamService *TeamService
	teamOnce    sync.Once
)

func Team() *TeamService {
	teamOnce.Do(func() {
		teamService = &TeamService{
			repo:  repository.NewAttendanceRepository(nil),
			users: repository.NewUserRepository(nil),
			now:   time.Now,
		}
	})
	return teamService
}

func newTeamService(
	repo repository.AttendanceRepository,
	users repository.UserRepository,
	now func() time.Time,
) *TeamService {
	return &TeamService{repo: repo, users: users, now: now}
}

// Overview 带教主管的团队当日视图
// 每个实训生归入三类：已完成、缺下班卡、缺勤
func (s *TeamService) Overview(ctx context.Context, viewerPublicID int64, dateKey string) (*dto.TeamOverviewData, error) {
	viewer, err := s.users.GetByPublicID(ctx, viewerPublicID)
	if err != nil {
		logger.Logger.Error("Failed to query viewer",
			zap.Int64("user_id", viewerPublicID),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}
	if viewer == nil {
		return nil, errors.UserNotFound
	}
	if viewer.Role != model.UserRoleHead && viewer.Role != model.UserRoleAdmin {
		return nil, errors.RoleForbidden
	}

	loc, err := time.LoadLocation(config.Cfg.DefaultTimezone)
	if err != nil {
		loc = time.Local
	}

	now := s.now().In(loc)

	var date time.Time
	if dateKey == "" {
		date = dateOnly(now)
		dateKey = utils.DateKey(now)
	} else {
		var ok bool
		date, ok = utils.ParseDateKey(dateKey, loc)
		if !ok {
			return nil, errors.InvalidDate
		}
	}

	trainees, err := s.users.ListByRole(ctx, model.UserRoleTrainee)
	if err != nil {
		logger.Logger.Error("Failed to list trainees", zap.Error(err))
		return nil, errors.StoreReadFailed
	}

	logs, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		logger.Logger.Error("Failed to list attendance by date",
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}

	byUser := make(map[int64]*model.AttendanceLog, len(logs))
	for _, log := range logs {
		byUser[log.UserID] = log
	}

	overview := &dto.TeamOverviewData{
		Date:    dateKey,
		Members: make([]dto.TeamMemberRow, 0, len(trainees)),
	}

	for _, trainee := range trainees {
		row := dto.TeamMemberRow{
			UserID: trainee.PublicID,
			Name:   trainee.Name,
		}

		log := byUser[trainee.ID]
		row.Status = string(log.Status())

		switch log.Status() {
		case model.AttendanceCompleted:
			overview.CompleteCount++
		case model.AttendanceInProgress:
			overview.MissingOutCount++
		default:
			overview.AbsentCount++
		}

		if log != nil {
			row.TimeIn = log.TimeIn
			row.TimeOut = log.TimeOut
			if minutes, ok := Aggregate().RecordMinutes(log, now, loc); ok {
				hours := Aggregate().HoursFromMinutes(minutes)
				row.WorkHours = &hours
			}
		}

		// 累计完成小时数，供主管了解各实训生进度
		all, err := s.repo.ListAll(ctx, trainee.ID, config.Cfg.ProgressQueryLimit)
		if err == nil {
			progress := Aggregate().Progress(all, trainee.TargetHours(config.Cfg.TargetHours), now, loc)
			row.CompletedHours = progress.CompletedHours
		}

		overview.Members = append(overview.Members, row)
	}

	return overview, nil
}
