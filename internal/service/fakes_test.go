package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"TimedIn/internal/model"
	"TimedIn/internal/model/dto"
	"TimedIn/utils"
)

// 内存版仓储和缓存，测试用

type fakeAttendanceRepo struct {
	mu   sync.Mutex
	rows map[string]*model.AttendanceLog // key: "userID|dateKey"

	readErr  error
	writeErr error

	// 最近一次 Upsert 携带的 ctx 截止时间（无截止时为 nil）
	upsertDeadline *time.Time
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{rows: make(map[string]*model.AttendanceLog)}
}

func (f *fakeAttendanceRepo) mapKey(userID int64, dateKey string) string {
	return strconv.FormatInt(userID, 10) + "|" + dateKey
}

func (f *fakeAttendanceRepo) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*model.AttendanceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	row := f.rows[f.mapKey(userID, utils.DateKey(date))]
	if row == nil {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, log *model.AttendanceLog, columns []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upsertDeadline = nil
	if deadline, ok := ctx.Deadline(); ok {
		f.upsertDeadline = &deadline
	}

	if f.writeErr != nil {
		return f.writeErr
	}

	key := f.mapKey(log.UserID, utils.DateKey(log.Date))
	existing := f.rows[key]
	if existing == nil {
		clone := *log
		f.rows[key] = &clone
		return nil
	}

	for _, col := range columns {
		switch col {
		case "time_in":
			existing.TimeIn = log.TimeIn
		case "time_out":
			existing.TimeOut = log.TimeOut
		case "total_hours":
			existing.TotalHours = log.TotalHours
		case "work_notes":
			existing.WorkNotes = log.WorkNotes
		}
	}
	return nil
}

func (f *fakeAttendanceRepo) list(userID int64) []*model.AttendanceLog {
	var logs []*model.AttendanceLog
	for _, row := range f.rows {
		if row.UserID == userID {
			clone := *row
			logs = append(logs, &clone)
		}
	}
	return logs
}

func (f *fakeAttendanceRepo) ListRecent(ctx context.Context, userID int64, limit int) ([]*model.AttendanceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	logs := f.list(userID)
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (f *fakeAttendanceRepo) ListByDateRange(ctx context.Context, userID int64, from, to time.Time) ([]*model.AttendanceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var logs []*model.AttendanceLog
	for _, row := range f.list(userID) {
		if row.Date.Before(from) || row.Date.After(to.AddDate(0, 0, 1)) {
			continue
		}
		logs = append(logs, row)
	}
	return logs, nil
}

func (f *fakeAttendanceRepo) ListAll(ctx context.Context, userID int64, limit int) ([]*model.AttendanceLog, error) {
	return f.ListRecent(ctx, userID, limit)
}

func (f *fakeAttendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]*model.AttendanceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var logs []*model.AttendanceLog
	key := utils.DateKey(date)
	for _, row := range f.rows {
		if utils.DateKey(row.Date) == key {
			clone := *row
			logs = append(logs, &clone)
		}
	}
	return logs, nil
}

func (f *fakeAttendanceRepo) ListMissingTimeOut(ctx context.Context, date time.Time, limit int) ([]*model.AttendanceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var logs []*model.AttendanceLog
	key := utils.DateKey(date)
	for _, row := range f.rows {
		if utils.DateKey(row.Date) == key && row.TimeIn != nil && row.TimeOut == nil && row.TotalHours == nil {
			clone := *row
			logs = append(logs, &clone)
			if len(logs) == limit {
				break
			}
		}
	}
	return logs, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User // key: public_id
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[int64]*model.User)}
	for _, u := range users {
		f.users[u.PublicID] = u
	}
	return f
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[publicID], nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	f.users[user.PublicID] = user
	return nil
}

func (f *fakeUserRepo) UpdateFields(ctx context.Context, userID int64, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			if name, ok := fields["name"].(string); ok {
				u.Name = name
			}
			if tz, ok := fields["timezone"].(string); ok {
				u.Timezone = tz
			}
			if phone, ok := fields["alert_phone"].(string); ok {
				u.AlertPhone = &phone
			}
			return nil
		}
	}
	return nil
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role model.UserRole) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []*model.User
	for _, u := range f.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []*model.User
	for _, id := range ids {
		for _, u := range f.users {
			if u.ID == id {
				users = append(users, u)
			}
		}
	}
	return users, nil
}

// fakeLocker 进程内锁，记录占用状态
type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	busy     bool // 置为 true 时 TryClockLock 恒失败
	lockHits int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (f *fakeLocker) TryClockLock(ctx context.Context, userID int64, date string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false, nil
	}
	key := date + "#" + time.Duration(userID).String()
	if f.held[key] {
		return false, nil
	}
	f.held[key] = true
	f.lockHits++
	return true, nil
}

func (f *fakeLocker) UnlockClock(ctx context.Context, userID int64, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, date+"#"+time.Duration(userID).String())
	return nil
}

// fakeStatusCache 进程内状态缓存
type fakeStatusCache struct {
	mu      sync.Mutex
	entries map[string]*dto.TodayStatusData
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{entries: make(map[string]*dto.TodayStatusData)}
}

func (f *fakeStatusCache) GetToday(ctx context.Context, userID int64, date string) (*dto.TodayStatusData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[date+"#"+time.Duration(userID).String()], nil
}

func (f *fakeStatusCache) SetToday(ctx context.Context, userID int64, date string, status *dto.TodayStatusData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[date+"#"+time.Duration(userID).String()] = status
	return nil
}

func (f *fakeStatusCache) Invalidate(ctx context.Context, userID int64, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, date+"#"+time.Duration(userID).String())
	return nil
}
