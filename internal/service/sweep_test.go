package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimedIn/internal/model"
)

func newSweepFixture(t *testing.T) (*SweepService, *fakeAttendanceRepo, *[]model.MissingTimeOutAlertMessage, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	users := newFakeUserRepo(
		&model.User{BaseModel: model.BaseModel{ID: 2}, PublicID: 9002, Email: "ana@example.com", Name: "Ana", Role: model.UserRoleTrainee, Timezone: "Asia/Manila"},
		&model.User{BaseModel: model.BaseModel{ID: 3}, PublicID: 9003, Email: "ben@example.com", Name: "Ben", Role: model.UserRoleTrainee, Timezone: "Asia/Manila"},
	)

	repo := newFakeAttendanceRepo()
	published := &[]model.MissingTimeOutAlertMessage{}
	now := time.Date(2026, 3, 3, 2, 0, 0, 0, loc)
	svc := newSweepService(repo, users, func(msg model.MissingTimeOutAlertMessage) error {
		*published = append(*published, msg)
		return nil
	}, func() time.Time { return now })
	return svc, repo, published, now
}

func TestProcessSweepMarksAndAlerts(t *testing.T) {
	svc, repo, published, now := newSweepFixture(t)
	sweepDay := time.Date(2026, 3, 2, 0, 0, 0, 0, now.Location())

	eight := 8.0
	// Ana 缺下班卡，Ben 已完成，不该被扫到
	seedLog(t, repo, 2, sweepDay, "08:30:00", "", nil)
	seedLog(t, repo, 3, sweepDay, "08:00:00", "17:00:00", &eight)

	marked, err := svc.ProcessSweep(context.Background(), model.SweepRequestMessage{
		MessageID: "sweep_1",
		BatchID:   "batch-a",
		SweepDate: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	// 缺卡记录工时记 0，但不补 time_out
	row, repoErr := repo.GetByUserAndDate(context.Background(), 2, sweepDay)
	require.NoError(t, repoErr)
	require.NotNil(t, row.TotalHours)
	assert.Equal(t, 0.0, *row.TotalHours)
	assert.Nil(t, row.TimeOut)
	assert.Equal(t, "08:30:00", *row.TimeIn)

	// 已完成的记录保持原样
	done, repoErr := repo.GetByUserAndDate(context.Background(), 3, sweepDay)
	require.NoError(t, repoErr)
	assert.Equal(t, 8.0, *done.TotalHours)

	require.Len(t, *published, 1)
	alert := (*published)[0]
	assert.Equal(t, "batch-a", alert.BatchID)
	assert.Equal(t, "2026-03-02", alert.SweepDate)
	assert.Equal(t, int64(9002), alert.UserID)
	assert.Equal(t, "Ana", alert.TraineeName)
	assert.Equal(t, "08:30:00", alert.TimeIn)
}

func TestProcessSweepEmptyDay(t *testing.T) {
	svc, _, published, _ := newSweepFixture(t)

	marked, err := svc.ProcessSweep(context.Background(), model.SweepRequestMessage{
		MessageID: "sweep_2",
		BatchID:   "batch-b",
		SweepDate: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Zero(t, marked)
	assert.Empty(t, *published)
}

func TestProcessSweepInvalidDate(t *testing.T) {
	svc, _, _, _ := newSweepFixture(t)

	_, err := svc.ProcessSweep(context.Background(), model.SweepRequestMessage{SweepDate: "03-02-2026"})
	assert.Error(t, err)
}

func TestProcessSweepIdempotentRerun(t *testing.T) {
	svc, repo, published, now := newSweepFixture(t)
	sweepDay := time.Date(2026, 3, 2, 0, 0, 0, 0, now.Location())
	seedLog(t, repo, 2, sweepDay, "08:30:00", "", nil)

	msg := model.SweepRequestMessage{MessageID: "sweep_3", BatchID: "batch-c", SweepDate: "2026-03-02"}
	marked, err := svc.ProcessSweep(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	// 重放同一条消息：记录已有 total_hours，不再命中缺卡查询
	marked, err = svc.ProcessSweep(context.Background(), msg)
	require.NoError(t, err)
	assert.Zero(t, marked)
	assert.Len(t, *published, 1)
}

func TestProcessSweepWithoutPublisher(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	users := newFakeUserRepo(
		&model.User{BaseModel: model.BaseModel{ID: 2}, PublicID: 9002, Email: "ana@example.com", Name: "Ana", Role: model.UserRoleTrainee, Timezone: "Asia/Manila"},
	)
	repo := newFakeAttendanceRepo()
	sweepDay := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	seedLog(t, repo, 2, sweepDay, "08:30:00", "", nil)

	svc := newSweepService(repo, users, nil, time.Now)
	marked, err := svc.ProcessSweep(context.Background(), model.SweepRequestMessage{SweepDate: "2026-03-02"})
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
}
