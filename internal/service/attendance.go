package service

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"TimedIn/config"
	"TimedIn/internal/cache"
	"TimedIn/internal/model"
	"TimedIn/internal/model/dto"
	"TimedIn/internal/repository"
	"TimedIn/pkg/errors"
	"TimedIn/pkg/geo"
	"TimedIn/pkg/logger"
	"TimedIn/pkg/metrics"
	"TimedIn/utils"
)

// clockLocker 打卡写入的互斥锁，正式实现走 Redis SETNX
type clockLocker interface {
	TryClockLock(ctx context.Context, userID int64, date string) (bool, error)
	UnlockClock(ctx context.Context, userID int64, date string) error
}

// statusCache 今日状态缓存
type statusCache interface {
	GetToday(ctx context.Context, userID int64, date string) (*dto.TodayStatusData, error)
	SetToday(ctx context.Context, userID int64, date string, status *dto.TodayStatusData) error
	Invalidate(ctx context.Context, userID int64, date string) error
}

type redisClockLocker struct{}

func (redisClockLocker) TryClockLock(ctx context.Context, userID int64, date string) (bool, error) {
	return cache.TryClockLock(ctx, userID, date)
}

func (redisClockLocker) UnlockClock(ctx context.Context, userID int64, date string) error {
	return cache.UnlockClock(ctx, userID, date)
}

type redisStatusCache struct{}

func (redisStatusCache) GetToday(ctx context.Context, userID int64, date string) (*dto.TodayStatusData, error) {
	return cache.GetTodayStatus(ctx, userID, date)
}

func (redisStatusCache) SetToday(ctx context.Context, userID int64, date string, status *dto.TodayStatusData) error {
	return cache.SetTodayStatus(ctx, userID, date, status)
}

func (redisStatusCache) Invalidate(ctx context.Context, userID int64, date string) error {
	return cache.InvalidateTodayStatus(ctx, userID, date)
}

type AttendanceService struct {
	repo   repository.AttendanceRepository
	users  repository.UserRepository
	locker clockLocker
	cache  statusCache
	now    func() time.Time
}

var (
	attendanceService *AttendanceService
	attendanceOnce    sync.Once
)

func Attendance() *AttendanceService {
	attendanceOnce.Do(func() {
		attendanceService = &AttendanceService{
			repo:   repository.NewAttendanceRepository(nil),
			users:  repository.NewUserRepository(nil),
			locker: redisClockLocker{},
			cache:  redisStatusCache{},
			now:    time.Now,
		}
	})
	return attendanceService
}

// newAttendanceService 测试用构造器，允许注入依赖
func newAttendanceService(
	repo repository.AttendanceRepository,
	users repository.UserRepository,
	locker clockLocker,
	statusCache statusCache,
	now func() time.Time,
) *AttendanceService {
	return &AttendanceService{
		repo:   repo,
		users:  users,
		locker: locker,
		cache:  statusCache,
		now:    now,
	}
}

// resolveUser 根据对外 ID 解析用户及其时区
func (s *AttendanceService) resolveUser(ctx context.Context, publicID int64) (*model.User, *time.Location, error) {
	user, err := s.users.GetByPublicID(ctx, publicID)
	if err != nil {
		logger.Logger.Error("Failed to query user",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
		return nil, nil, errors.StoreReadFailed
	}
	if user == nil {
		return nil, nil, errors.UserNotFound
	}

	tz := user.Timezone
	if tz == "" {
		tz = config.Cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Logger.Warn("Invalid timezone on user profile, falling back to default",
			zap.Int64("user_id", publicID),
			zap.String("timezone", tz),
		)
		loc, err = time.LoadLocation(config.Cfg.DefaultTimezone)
		if err != nil {
			loc = time.Local
		}
	}

	return user, loc, nil
}

func (s *AttendanceService) buildTodayStatus(log *model.AttendanceLog, dateKey string) *dto.TodayStatusData {
	status := &dto.TodayStatusData{
		Date:   dateKey,
		Status: string(log.Status()),
	}
	if log != nil {
		status.TimeIn = log.TimeIn
		status.TimeOut = log.TimeOut
		status.WorkHours = log.TotalHours
		status.HasNote = log.WorkNotes != nil && *log.WorkNotes != ""
	}
	return status
}

// GetToday 查询今日打卡状态，优先走缓存
func (s *AttendanceService) GetToday(ctx context.Context, publicID int64) (*dto.TodayStatusData, error) {
	user, loc, err := s.resolveUser(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(loc)
	dateKey := utils.DateKey(now)

	if cached, err := s.cache.GetToday(ctx, user.ID, dateKey); err == nil && cached != nil {
		return cached, nil
	}

	log, err := s.repo.GetByUserAndDate(ctx, user.ID, now)
	if err != nil {
		logger.Logger.Error("Failed to read today attendance",
			zap.Int64("user_id", publicID),
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}

	status := s.buildTodayStatus(log, dateKey)

	if err := s.cache.SetToday(ctx, user.ID, dateKey, status); err != nil {
		logger.Logger.Warn("Failed to cache today status",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
	}

	return status, nil
}

// ClockIn 上班打卡
// 状态前置校验和围栏在锁外（只读），锁内重读后写入
func (s *AttendanceService) ClockIn(ctx context.Context, publicID int64, req dto.ClockInRequest) (*dto.TodayStatusData, error) {
	// 客户端取定位有 GEO_TIMEOUT_SECONDS 的预算，服务端按同一预算兜底整个请求
	ctx, cancel := context.WithTimeout(ctx, time.Duration(config.Cfg.GeoTimeoutSecs)*time.Second)
	defer cancel()

	user, loc, err := s.resolveUser(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(loc)
	dateKey := utils.DateKey(now)

	// 已完成或进行中的请求先吃状态错误，围栏只拦截真正可打卡的请求
	existing, err := s.repo.GetByUserAndDate(ctx, user.ID, now)
	if err != nil {
		logger.Logger.Error("Failed to read today attendance",
			zap.Int64("user_id", publicID),
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}
	switch existing.Status() {
	case model.AttendanceCompleted:
		return nil, errors.AttendanceAlreadyCompleted
	case model.AttendanceInProgress:
		return nil, errors.ClockInAlreadyOpen
	}

	if req.Latitude == nil || req.Longitude == nil {
		return nil, errors.LocationUnavailable
	}

	site := geo.Point{Lat: config.Cfg.SiteLatitude, Lng: config.Cfg.SiteLongitude}
	here := geo.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	distance := geo.DistanceMeters(here, site)
	if distance > config.Cfg.SiteRadiusMeters {
		metrics.RecordGeofenceRejection(ctx)
		logger.Logger.Info("Clock-in rejected by geofence",
			zap.Int64("user_id", publicID),
			zap.Float64("distance_meters", distance),
		)
		return nil, errors.WithDetails(errors.OutOfSiteRange, map[string]interface{}{
			"distance_meters": math.Round(distance),
			"radius_meters":   config.Cfg.SiteRadiusMeters,
		})
	}

	locked, err := s.locker.TryClockLock(ctx, user.ID, dateKey)
	if err != nil {
		logger.Logger.Warn("Failed to acquire clock lock",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
		return nil, errors.ClockBusy
	}
	if !locked {
		return nil, errors.ClockBusy
	}
	defer func() {
		if err := s.locker.UnlockClock(ctx, user.ID, dateKey); err != nil {
			logger.Logger.Warn("Failed to release clock lock",
				zap.Int64("user_id", publicID),
				zap.Error(err),
			)
		}
	}()

	// 锁内重读，挡住前置校验和拿锁之间完成的并发打卡
	existing, err = s.repo.GetByUserAndDate(ctx, user.ID, now)
	if err != nil {
		logger.Logger.Error("Failed to read today attendance",
			zap.Int64("user_id", publicID),
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}

	switch existing.Status() {
	case model.AttendanceCompleted:
		return nil, errors.AttendanceAlreadyCompleted
	case model.AttendanceInProgress:
		return nil, errors.ClockInAlreadyOpen
	}

	fragment := utils.ToFragment(now)
	log := &model.AttendanceLog{
		UserID: user.ID,
		Date:   dateOnly(now),
		TimeIn: &fragment,
	}

	if err := s.repo.Upsert(ctx, log, []string{"time_in"}); err != nil {
		logger.Logger.Error("Failed to persist clock-in",
			zap.Int64("user_id", publicID),
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreWriteFailed
	}

	metrics.RecordClockIn(ctx)
	logger.Logger.Info("Clock-in recorded",
		zap.Int64("user_id", publicID),
		zap.String("date", dateKey),
		zap.String("time_in", fragment),
	)

	if err := s.cache.Invalidate(ctx, user.ID, dateKey); err != nil {
		logger.Logger.Warn("Failed to invalidate today status cache", zap.Error(err))
	}

	// 保留已有笔记字段重建状态
	if existing != nil {
		existing.TimeIn = &fragment
		return s.buildTodayStatus(existing, dateKey), nil
	}
	return s.buildTodayStatus(log, dateKey), nil
}

// RequestClockOut 下班打卡第一阶段，只读预览，不改任何状态
func (s *AttendanceService) RequestClockOut(ctx context.Context, publicID int64) (*dto.ClockOutPreviewData, error) {
	user, loc, err := s.resolveUser(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(loc)
	dateKey := utils.DateKey(now)

	existing, err := s.repo.GetByUserAndDate(ctx, user.ID, now)
	if err != nil {
		logger.Logger.Error("Failed to read today attendance",
			zap.Int64("user_id", publicID),
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}

	switch existing.Status() {
	case model.AttendanceNotStarted:
		return nil, errors.NoOpenSession
	case model.AttendanceCompleted:
		return nil, errors.AttendanceAlreadyCompleted
	}

	outFragment := utils.ToFragment(now)
	hours := s.workHours(dateKey, *existing.TimeIn, outFragment, loc)

	return &dto.ClockOutPreviewData{
		Date:           dateKey,
		TimeIn:         *existing.TimeIn,
		TimeOutPlanned: outFragment,
		WorkHours:      hours,
	}, nil
}

// ConfirmClockOut 下班打卡第二阶段，时长按确认时刻重算而不是预览时刻
func (s *AttendanceService) ConfirmClockOut(ctx context.Context, publicID int64) (*dto.TodayStatusData, error) {
	user, loc, err := s.resolveUser(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(loc)
	dateKey := utils.DateKey(now)

	locked, err := s.locker.TryClockLock(ctx, user.ID, dateKey)
	if err != nil || !locked {
		return nil, errors.ClockBusy
	}
	defer func() {
		if err := s.locker.UnlockClock(ctx, user.ID, dateKey); err != nil {
			logger.Logger.Warn("Failed to release clock lock",
				zap.Int64("user_id", publicID),
				zap.Error(err),
			)
		}
	}()

	existing, err := s.repo.GetByUserAndDate(ctx, user.ID, now)
	if err != nil {
		logger.Logger.Error("Failed to read today attendance",
			zap.Int64("user_id", publicID),
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}

	switch existing.Status() {
	case model.AttendanceNotStarted:
		return nil, errors.NoOpenSession
	case model.AttendanceCompleted:
		return nil, errors.AttendanceAlreadyCompleted
	}

	outFragment := utils.ToFragment(now)
	hours := s.workHours(dateKey, *existing.TimeIn, outFragment, loc)

	log := &model.AttendanceLog{
		UserID:     user.ID,
		Date:       dateOnly(now),
		TimeIn:     existing.TimeIn,
		TimeOut:    &outFragment,
		TotalHours: &hours,
	}

	if err := s.repo.Upsert(ctx, log, []string{"time_out", "total_hours"}); err != nil {
		logger.Logger.Error("Failed to persist clock-out",
			zap.Int64("user_id", publicID),
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreWriteFailed
	}

	metrics.RecordClockOut(ctx, hours)
	logger.Logger.Info("Clock-out recorded",
		zap.Int64("user_id", publicID),
		zap.String("date", dateKey),
		zap.String("time_out", outFragment),
		zap.Float64("work_hours", hours),
	)

	if err := s.cache.Invalidate(ctx, user.ID, dateKey); err != nil {
		logger.Logger.Warn("Failed to invalidate today status cache", zap.Error(err))
	}

	existing.TimeOut = &outFragment
	existing.TotalHours = &hours
	return s.buildTodayStatus(existing, dateKey), nil
}

// workHours 计算打卡片段之间的时长（小时，两位小数），乱序数据按 0 处理
func (s *AttendanceService) workHours(dateKey, inFragment, outFragment string, loc *time.Location) float64 {
	in, okIn := utils.CombineDateTime(dateKey, inFragment, loc)
	out, okOut := utils.CombineDateTime(dateKey, outFragment, loc)
	if !okIn || !okOut {
		return 0
	}

	diff := out.Sub(in)
	if diff < 0 {
		return 0
	}
	return math.Round(diff.Hours()*100) / 100
}

// History 按日期倒序返回最近的考勤记录
func (s *AttendanceService) History(ctx context.Context, publicID int64, limit int) (*dto.HistoryData, error) {
	user, loc, err := s.resolveUser(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > config.Cfg.HistoryQueryLimit {
		limit = config.Cfg.HistoryQueryLimit
	}

	logs, err := s.repo.ListRecent(ctx, user.ID, limit)
	if err != nil {
		logger.Logger.Error("Failed to list attendance history",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}

	now := s.now().In(loc)
	records := make([]dto.RecordItem, 0, len(logs))
	for _, log := range logs {
		item := dto.RecordItem{
			Date:      log.DateKey(),
			Status:    string(log.Status()),
			TimeIn:    log.TimeIn,
			TimeOut:   log.TimeOut,
			WorkNotes: log.WorkNotes,
		}
		if minutes, ok := Aggregate().RecordMinutes(log, now, loc); ok {
			hours := Aggregate().HoursFromMinutes(minutes)
			item.WorkHours = &hours
		}
		records = append(records, item)
	}

	return &dto.HistoryData{Records: records, Total: len(records)}, nil
}

// WeeklySummary 最近七天（含今天）的工时汇总
func (s *AttendanceService) WeeklySummary(ctx context.Context, publicID int64) (*dto.WeeklySummaryData, error) {
	user, loc, err := s.resolveUser(ctx, publicID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(loc)
	windowDays := config.Cfg.WeeklyWindowDays
	from := now.AddDate(0, 0, -(windowDays - 1))

	logs, err := s.repo.ListByDateRange(ctx, user.ID, from, now)
	if err != nil {
		logger.Logger.Error("Failed to list weekly attendance",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}

	summary := Aggregate().WeeklySummary(logs, now, windowDays, loc)
	return &summary, nil
}

// Progress 相对累计目标的完成进度
func (s *AttendanceService) Progress(ctx context.Context, publicID int64) (*dto.ProgressData, error) {
	user, loc, err := s.resolveUser(ctx, publicID)
	if err != nil {
		return nil, err
	}

	logs, err := s.repo.ListAll(ctx, user.ID, config.Cfg.ProgressQueryLimit)
	if err != nil {
		logger.Logger.Error("Failed to list attendance for progress",
			zap.Int64("user_id", publicID),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}

	target := user.TargetHours(config.Cfg.TargetHours)
	progress := Aggregate().Progress(logs, target, s.now().In(loc), loc)
	return &progress, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
