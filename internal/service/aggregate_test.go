package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimedIn/internal/model"
)

func mustLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	return loc
}

func makeLog(dateKey string, timeIn, timeOut *string, totalHours *float64) *model.AttendanceLog {
	date, _ := time.Parse("2006-01-02", dateKey)
	return &model.AttendanceLog{
		UserID:     1,
		Date:       date,
		TimeIn:     timeIn,
		TimeOut:    timeOut,
		TotalHours: totalHours,
	}
}

func strptr(s string) *string   { return &s }
func f64ptr(f float64) *float64 { return &f }

func TestRecordMinutesPrefersStoredHours(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	now := time.Date(2026, 3, 2, 19, 0, 0, 0, loc)

	// 落库 8.50 小时优先于片段差值
	log := makeLog("2026-03-02", strptr("08:00:00"), strptr("18:00:00"), f64ptr(8.5))
	minutes, ok := svc.RecordMinutes(log, now, loc)
	require.True(t, ok)
	assert.Equal(t, 510, minutes)
}

func TestRecordMinutesDerivesFromFragments(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	now := time.Date(2026, 3, 2, 19, 0, 0, 0, loc)

	log := makeLog("2026-03-02", strptr("08:30:00"), strptr("17:00:00"), nil)
	minutes, ok := svc.RecordMinutes(log, now, loc)
	require.True(t, ok)
	assert.Equal(t, 510, minutes)
}

func TestRecordMinutesShortFragment(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	now := time.Date(2026, 3, 2, 19, 0, 0, 0, loc)

	// HH:MM 形式的历史数据
	log := makeLog("2026-03-02", strptr("09:00"), strptr("12:30"), nil)
	minutes, ok := svc.RecordMinutes(log, now, loc)
	require.True(t, ok)
	assert.Equal(t, 210, minutes)
}

func TestRecordMinutesOpenTodayCountsToNow(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()

	// 08:00 上班、尚未下班，中午查询应计 4 小时
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, loc)
	log := makeLog("2026-03-02", strptr("08:00:00"), nil, nil)
	minutes, ok := svc.RecordMinutes(log, now, loc)
	require.True(t, ok)
	assert.Equal(t, 240, minutes)
}

func TestRecordMinutesUnknownIsNotZero(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, loc)

	cases := []struct {
		name string
		log  *model.AttendanceLog
	}{
		{"no fragments", makeLog("2026-03-02", nil, nil, nil)},
		{"open session on past day", makeLog("2026-03-02", strptr("08:00:00"), nil, nil)},
		{"garbage fragment", makeLog("2026-03-02", strptr("not-a-time"), strptr("17:00:00"), nil)},
		{"out before in", makeLog("2026-03-02", strptr("17:00:00"), strptr("08:00:00"), nil)},
		{"nil log", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := svc.RecordMinutes(tc.log, now, loc)
			assert.False(t, ok)
		})
	}
}

func TestWeeklySummaryTrailingWindow(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	today := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)

	logs := []*model.AttendanceLog{
		makeLog("2026-03-08", strptr("08:00:00"), strptr("14:00:00"), nil), // 360 min
		makeLog("2026-03-06", nil, nil, f64ptr(6.0)),                       // 360 min
		makeLog("2026-03-02", strptr("08:00:00"), strptr("17:00:00"), nil), // 窗口首日
		makeLog("2026-03-01", strptr("08:00:00"), strptr("17:00:00"), nil), // 窗口外，忽略
		makeLog("2026-03-05", strptr("08:00:00"), nil, nil),                // 往日缺下班卡：时长未知但算出勤
	}

	summary := svc.WeeklySummary(logs, today, 7, loc)
	assert.Equal(t, "2026-03-02", summary.WindowStart)
	assert.Equal(t, "2026-03-08", summary.WindowEnd)
	assert.Equal(t, 360+360+540, summary.TotalMinutes)
	assert.Equal(t, 4, summary.DaysPresent)
	assert.InDelta(t, 21.0, summary.TotalHours, 0.001)
	assert.InDelta(t, 5.25, summary.AverageHours, 0.001)
}

func TestWeeklySummaryOpenTodaySessionCountsElapsed(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	today := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)

	// 今天 08:00 上班、尚未下班：中午的汇总应已计 4 小时
	logs := []*model.AttendanceLog{
		makeLog("2026-03-08", strptr("08:00:00"), nil, nil),
	}

	summary := svc.WeeklySummary(logs, today, 7, loc)
	assert.Equal(t, 240, summary.TotalMinutes)
	assert.Equal(t, 1, summary.DaysPresent)
	assert.InDelta(t, 4.0, summary.TotalHours, 0.001)
	assert.InDelta(t, 4.0, summary.AverageHours, 0.001)
}

func TestWeeklySummaryCountsSweptDayAsPresent(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	today := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)

	// 巡检补零的行：上班卡在、时长为 0，算出勤但不贡献分钟
	logs := []*model.AttendanceLog{
		makeLog("2026-03-06", strptr("08:00:00"), nil, f64ptr(0)),
		makeLog("2026-03-05", nil, nil, f64ptr(8.0)),
	}

	summary := svc.WeeklySummary(logs, today, 7, loc)
	assert.Equal(t, 480, summary.TotalMinutes)
	assert.Equal(t, 2, summary.DaysPresent)
	assert.InDelta(t, 4.0, summary.AverageHours, 0.001)
}

func TestWeeklySummaryEmpty(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	today := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)

	summary := svc.WeeklySummary(nil, today, 7, loc)
	assert.Equal(t, 0, summary.TotalMinutes)
	assert.Equal(t, 0, summary.DaysPresent)
	assert.Zero(t, summary.AverageHours)
}

func TestProgressClampsToTarget(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()

	// 500 小时对 486 目标：百分比封顶在 100，剩余为 0
	var logs []*model.AttendanceLog
	for i := 0; i < 50; i++ {
		date := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, i)
		logs = append(logs, makeLog(date.Format("2006-01-02"), nil, nil, f64ptr(10.0)))
	}

	progress := svc.Progress(logs, 486, time.Date(2026, 3, 8, 12, 0, 0, 0, loc), loc)
	assert.InDelta(t, 500.0, progress.CompletedHours, 0.001)
	assert.InDelta(t, 100.0, progress.ProgressPercent, 0.001)
	assert.Zero(t, progress.RemainingHours)
	assert.Equal(t, 50, progress.DaysLogged)
}

func TestProgressPartial(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)

	logs := []*model.AttendanceLog{
		makeLog("2026-03-02", nil, nil, f64ptr(8.0)),
		makeLog("2026-03-03", nil, nil, f64ptr(8.0)),
		makeLog("2026-03-04", strptr("08:00:00"), nil, nil), // 往日缺下班卡：时长未知但算出勤
	}

	progress := svc.Progress(logs, 486, now, loc)
	assert.InDelta(t, 16.0, progress.CompletedHours, 0.001)
	assert.InDelta(t, 470.0, progress.RemainingHours, 0.001)
	assert.InDelta(t, 3.29, progress.ProgressPercent, 0.01)
	assert.Equal(t, 3, progress.DaysLogged)
}

func TestProgressOpenTodaySessionCountsElapsed(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)

	// 昨天 8 小时落库，今天 08:00 上班未下班：进度应是 12 小时
	logs := []*model.AttendanceLog{
		makeLog("2026-03-07", nil, nil, f64ptr(8.0)),
		makeLog("2026-03-08", strptr("08:00:00"), nil, nil),
	}

	progress := svc.Progress(logs, 486, now, loc)
	assert.InDelta(t, 12.0, progress.CompletedHours, 0.001)
	assert.Equal(t, 2, progress.DaysLogged)
}

func TestProgressZeroTarget(t *testing.T) {
	loc := mustLoc(t)
	svc := Aggregate()

	logs := []*model.AttendanceLog{makeLog("2026-03-02", nil, nil, f64ptr(8.0))}
	progress := svc.Progress(logs, 0, time.Date(2026, 3, 8, 12, 0, 0, 0, loc), loc)
	assert.Zero(t, progress.ProgressPercent)
	assert.Zero(t, progress.RemainingHours)
	assert.InDelta(t, 8.0, progress.CompletedHours, 0.001)
}
