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

type NoteService struct {
	repo  repository.AttendanceRepository
	users repository.UserRepository
	cache statusCache
	now   func() time.Time
}

var (
	noteService *NoteService
	noteOnce    sync.Once
)

func Note() *NoteService {
	noteOnce.Do(func() {
		noteService = &NoteService{
			repo:  repository.NewAttendanceRepository(nil),
			users: repository.NewUserRepository(nil),
			cache: redisStatusCache{},
			now:   time.Now,
		}
	})
	return noteService
}

func newNoteService(
	repo repository.AttendanceRepository,
	users repository.UserRepository,
	statusCache statusCache,
	now func() time.Time,
) *NoteService {
	return &NoteService{repo: repo, users: users, cache: statusCache, now: now}
}

func (s *NoteService) resolveUser(ctx context.Context, publicID int64) (*model.User, *time.Location, error) {
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
		loc = time.Local
	}
	return user, loc, nil
}

// SaveTodayNote 保存当日笔记，当天只允许提交一次，后续修改走日历入口
func (s *NoteService) SaveTodayNote(ctx context.Context, publicID int64, content string) (*dto.NoteData, error) {
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

	if existing != nil && existing.WorkNotes != nil && *existing.WorkNotes != "" {
		return nil, errors.NoteAlreadySaved
	}

	return s.upsertNote(ctx, user.ID, dateOnly(now), dateKey, content, publicID)
}

// UpsertNoteForDate 日历入口，对过去或今天的任意日期覆盖写笔记
func (s *NoteService) UpsertNoteForDate(ctx context.Context, publicID int64, dateKey, content string) (*dto.NoteData, error) {
	user, loc, err := s.resolveUser(ctx, publicID)
	if err != nil {
		return nil, err
	}

	date, ok := utils.ParseDateKey(dateKey, loc)
	if !ok {
		return nil, errors.InvalidDate
	}

	now := s.now().In(loc)
	today := dateOnly(now)
	if date.After(today) {
		return nil, errors.NoteDateInFuture
	}

	return s.upsertNote(ctx, user.ID, date, dateKey, content, publicID)
}

// GetNote 读取某天的笔记
func (s *NoteService) GetNote(ctx context.Context, publicID int64, dateKey string) (*dto.NoteData, error) {
	user, loc, err := s.resolveUser(ctx, publicID)
	if err != nil {
		return nil, err
	}

	date, ok := utils.ParseDateKey(dateKey, loc)
	if !ok {
		return nil, errors.InvalidDate
	}

	log, err := s.repo.GetByUserAndDate(ctx, user.ID, date)
	if err != nil {
		logger.Logger.Error("Failed to read note",
			zap.Int64("user_id", publicID),
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreReadFailed
	}

	note := &dto.NoteData{Date: dateKey}
	if log != nil {
		note.Content = log.WorkNotes
	}
	return note, nil
}

func (s *NoteService) upsertNote(ctx context.Context, userID int64, date time.Time, dateKey, content string, publicID int64) (*dto.NoteData, error) {
	log := &model.AttendanceLog{
		UserID:    userID,
		Date:      date,
		WorkNotes: &content,
	}

	if err := s.repo.Upsert(ctx, log, []string{"work_notes"}); err != nil {
		logger.Logger.Error("Failed to persist work note",
			zap.Int64("user_id", publicID),
			zap.String("date", dateKey),
			zap.Error(err),
		)
		return nil, errors.StoreWriteFailed
	}

	logger.Logger.Info("Work note saved",
		zap.Int64("user_id", publicID),
		zap.String("date", dateKey),
	)

	if err := s.cache.Invalidate(ctx, userID, dateKey); err != nil {
		logger.Logger.Warn("Failed to invalidate today status cache", zap.Error(err))
	}

	return &dto.NoteData{Date: dateKey, Content: &content}, nil
}
