package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimedIn/config"
	"TimedIn/internal/model"
	"TimedIn/internal/model/dto"
	"TimedIn/pkg/errors"
)

const (
	testPublicID = int64(7001)
	testUserID   = int64(42)
)

// 站点内外的测试坐标
var (
	onSiteLat = 14.605213
	onSiteLng = 121.048929
	farLat    = 14.650000 // 约 5 公里外
	farLng    = 121.048929
)

type attendanceFixture struct {
	svc    *AttendanceService
	repo   *fakeAttendanceRepo
	users  *fakeUserRepo
	locker *fakeLocker
	cache  *fakeStatusCache
	now    time.Time
}

func newAttendanceFixture(t *testing.T) *attendanceFixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	f := &attendanceFixture{
		repo:   newFakeAttendanceRepo(),
		users:  newFakeUserRepo(&model.User{BaseModel: model.BaseModel{ID: testUserID}, PublicID: testPublicID, Email: "trainee@example.com", Name: "Trainee", Role: model.UserRoleTrainee, Timezone: "Asia/Manila"}),
		locker: newFakeLocker(),
		cache:  newFakeStatusCache(),
		now:    time.Date(2026, 3, 2, 8, 30, 0, 0, loc),
	}
	f.svc = newAttendanceService(f.repo, f.users, f.locker, f.cache, func() time.Time { return f.now })
	return f
}

func (f *attendanceFixture) clockIn(t *testing.T) *dto.TodayStatusData {
	t.Helper()
	status, err := f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{Latitude: &onSiteLat, Longitude: &onSiteLng})
	require.NoError(t, err)
	return status
}

func TestClockInRecordsTimeIn(t *testing.T) {
	f := newAttendanceFixture(t)

	status := f.clockIn(t)
	assert.Equal(t, string(model.AttendanceInProgress), status.Status)
	require.NotNil(t, status.TimeIn)
	assert.Equal(t, "08:30:00", *status.TimeIn)
	assert.Nil(t, status.TimeOut)

	row, err := f.repo.GetByUserAndDate(context.Background(), testUserID, f.now)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "08:30:00", *row.TimeIn)
}

func TestClockInRequiresLocation(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{})
	assert.ErrorIs(t, err, errors.LocationUnavailable)

	_, err = f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{Latitude: &onSiteLat})
	assert.ErrorIs(t, err, errors.LocationUnavailable)
}

func TestClockInRejectsOutOfRange(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{Latitude: &farLat, Longitude: &farLng})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.OutOfSiteRange)

	var detailed *errors.DetailedError
	require.ErrorAs(t, err, &detailed)
	distance, ok := detailed.Details["distance_meters"].(float64)
	require.True(t, ok)
	assert.Greater(t, distance, 800.0)

	// 被拒绝时不落任何记录
	row, repoErr := f.repo.GetByUserAndDate(context.Background(), testUserID, f.now)
	require.NoError(t, repoErr)
	assert.Nil(t, row)
}

func TestClockInTwiceRejected(t *testing.T) {
	f := newAttendanceFixture(t)
	f.clockIn(t)

	_, err := f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{Latitude: &onSiteLat, Longitude: &onSiteLng})
	assert.ErrorIs(t, err, errors.ClockInAlreadyOpen)
}

func TestClockInAfterCompletedDay(t *testing.T) {
	f := newAttendanceFixture(t)
	f.clockIn(t)

	f.now = f.now.Add(8 * time.Hour)
	_, err := f.svc.ConfirmClockOut(context.Background(), testPublicID)
	require.NoError(t, err)

	_, err = f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{Latitude: &onSiteLat, Longitude: &onSiteLng})
	assert.ErrorIs(t, err, errors.AttendanceAlreadyCompleted)
}

func TestClockInStateErrorWinsOverGeofence(t *testing.T) {
	f := newAttendanceFixture(t)
	f.clockIn(t)

	f.now = f.now.Add(8 * time.Hour)
	_, err := f.svc.ConfirmClockOut(context.Background(), testPublicID)
	require.NoError(t, err)

	// 当天已完成时，站外坐标或缺坐标都应先报状态错误
	_, err = f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{Latitude: &farLat, Longitude: &farLng})
	assert.ErrorIs(t, err, errors.AttendanceAlreadyCompleted)

	_, err = f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{})
	assert.ErrorIs(t, err, errors.AttendanceAlreadyCompleted)
}

func TestClockInBoundsRequestDeadline(t *testing.T) {
	f := newAttendanceFixture(t)

	before := time.Now()
	f.clockIn(t)

	// 写入时 ctx 必须带定位预算的截止时间
	require.NotNil(t, f.repo.upsertDeadline)
	budget := time.Duration(config.Cfg.GeoTimeoutSecs) * time.Second
	assert.WithinDuration(t, before.Add(budget), *f.repo.upsertDeadline, 2*time.Second)
}

func TestClockInWhenLockBusy(t *testing.T) {
	f := newAttendanceFixture(t)
	f.locker.busy = true

	_, err := f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{Latitude: &onSiteLat, Longitude: &onSiteLng})
	assert.ErrorIs(t, err, errors.ClockBusy)
}

func TestRequestClockOutWithoutSession(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.svc.RequestClockOut(context.Background(), testPublicID)
	assert.ErrorIs(t, err, errors.NoOpenSession)
}

func TestRequestClockOutIsReadOnly(t *testing.T) {
	f := newAttendanceFixture(t)
	f.clockIn(t)

	f.now = f.now.Add(4 * time.Hour)
	preview, err := f.svc.RequestClockOut(context.Background(), testPublicID)
	require.NoError(t, err)
	assert.Equal(t, "08:30:00", preview.TimeIn)
	assert.Equal(t, "12:30:00", preview.TimeOutPlanned)
	assert.InDelta(t, 4.0, preview.WorkHours, 0.001)

	// 预览不落库，放弃确认后记录仍是进行中
	row, repoErr := f.repo.GetByUserAndDate(context.Background(), testUserID, f.now)
	require.NoError(t, repoErr)
	assert.Nil(t, row.TimeOut)
	assert.Nil(t, row.TotalHours)
	assert.Equal(t, model.AttendanceInProgress, row.Status())
}

func TestConfirmClockOutRecomputesAtConfirmTime(t *testing.T) {
	f := newAttendanceFixture(t)
	f.clockIn(t)

	f.now = f.now.Add(4 * time.Hour)
	preview, err := f.svc.RequestClockOut(context.Background(), testPublicID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, preview.WorkHours, 0.001)

	// 用户盯着确认框发呆半小时，时长按确认时刻算
	f.now = f.now.Add(30 * time.Minute)
	status, err := f.svc.ConfirmClockOut(context.Background(), testPublicID)
	require.NoError(t, err)
	assert.Equal(t, string(model.AttendanceCompleted), status.Status)
	require.NotNil(t, status.TimeOut)
	assert.Equal(t, "13:00:00", *status.TimeOut)
	require.NotNil(t, status.WorkHours)
	assert.InDelta(t, 4.5, *status.WorkHours, 0.001)
}

func TestConfirmClockOutTwiceRejected(t *testing.T) {
	f := newAttendanceFixture(t)
	f.clockIn(t)

	f.now = f.now.Add(8 * time.Hour)
	_, err := f.svc.ConfirmClockOut(context.Background(), testPublicID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmClockOut(context.Background(), testPublicID)
	assert.ErrorIs(t, err, errors.AttendanceAlreadyCompleted)

	_, err = f.svc.RequestClockOut(context.Background(), testPublicID)
	assert.ErrorIs(t, err, errors.AttendanceAlreadyCompleted)
}

func TestClockInPreservesExistingNote(t *testing.T) {
	f := newAttendanceFixture(t)

	// 先存了笔记再打卡：字段级 upsert 不碰 work_notes
	note := "morning standup notes"
	require.NoError(t, f.repo.Upsert(context.Background(), &model.AttendanceLog{
		UserID:    testUserID,
		Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, f.now.Location()),
		WorkNotes: &note,
	}, []string{"work_notes"}))

	status := f.clockIn(t)
	assert.True(t, status.HasNote)

	row, err := f.repo.GetByUserAndDate(context.Background(), testUserID, f.now)
	require.NoError(t, err)
	require.NotNil(t, row.WorkNotes)
	assert.Equal(t, note, *row.WorkNotes)
	assert.Equal(t, "08:30:00", *row.TimeIn)
}

func TestGetTodayNotStarted(t *testing.T) {
	f := newAttendanceFixture(t)

	status, err := f.svc.GetToday(context.Background(), testPublicID)
	require.NoError(t, err)
	assert.Equal(t, string(model.AttendanceNotStarted), status.Status)
	assert.Equal(t, "2026-03-02", status.Date)
	assert.Nil(t, status.TimeIn)
}

func TestGetTodayUsesCacheUntilInvalidated(t *testing.T) {
	f := newAttendanceFixture(t)

	first, err := f.svc.GetToday(context.Background(), testPublicID)
	require.NoError(t, err)
	assert.Equal(t, string(model.AttendanceNotStarted), first.Status)

	// 打卡写入后缓存应当失效，重新读到 in_progress
	f.clockIn(t)
	second, err := f.svc.GetToday(context.Background(), testPublicID)
	require.NoError(t, err)
	assert.Equal(t, string(model.AttendanceInProgress), second.Status)
}

func TestGetTodayUnknownUser(t *testing.T) {
	f := newAttendanceFixture(t)

	_, err := f.svc.GetToday(context.Background(), int64(999999))
	assert.ErrorIs(t, err, errors.UserNotFound)
}

func TestHistoryReturnsDerivedHours(t *testing.T) {
	f := newAttendanceFixture(t)
	f.clockIn(t)
	f.now = f.now.Add(8 * time.Hour)
	_, err := f.svc.ConfirmClockOut(context.Background(), testPublicID)
	require.NoError(t, err)

	history, err := f.svc.History(context.Background(), testPublicID, 10)
	require.NoError(t, err)
	require.Equal(t, 1, history.Total)
	record := history.Records[0]
	assert.Equal(t, "2026-03-02", record.Date)
	assert.Equal(t, string(model.AttendanceCompleted), record.Status)
	require.NotNil(t, record.WorkHours)
	assert.InDelta(t, 8.0, *record.WorkHours, 0.001)
}

func TestOpenSessionCountsTowardSummaryAndProgress(t *testing.T) {
	f := newAttendanceFixture(t)
	f.clockIn(t)

	// 08:30 上班，12:30 查询：开放会话应已计 4 小时
	f.now = f.now.Add(4 * time.Hour)

	summary, err := f.svc.WeeklySummary(context.Background(), testPublicID)
	require.NoError(t, err)
	assert.Equal(t, 240, summary.TotalMinutes)
	assert.Equal(t, 1, summary.DaysPresent)

	progress, err := f.svc.Progress(context.Background(), testPublicID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, progress.CompletedHours, 0.001)
	assert.Equal(t, 1, progress.DaysLogged)
}

func TestStoreReadFailureSurfaces(t *testing.T) {
	f := newAttendanceFixture(t)
	f.repo.readErr = assert.AnError

	_, err := f.svc.GetToday(context.Background(), testPublicID)
	assert.ErrorIs(t, err, errors.StoreReadFailed)
}

func TestStoreWriteFailureSurfaces(t *testing.T) {
	f := newAttendanceFixture(t)
	f.repo.writeErr = assert.AnError

	_, err := f.svc.ClockIn(context.Background(), testPublicID, dto.ClockInRequest{Latitude: &onSiteLat, Longitude: &onSiteLng})
	assert.ErrorIs(t, err, errors.StoreWriteFailed)
}
