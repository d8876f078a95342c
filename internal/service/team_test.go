package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimedIn/internal/model"
	"TimedIn/pkg/errors"
)

func newTeamFixture(t *testing.T) (*TeamService, *fakeAttendanceRepo, *fakeUserRepo, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	users := newFakeUserRepo(
		&model.User{BaseModel: model.BaseModel{ID: 1}, PublicID: 9001, Email: "head@example.com", Name: "Head", Role: model.UserRoleHead, Timezone: "Asia/Manila"},
		&model.User{BaseModel: model.BaseModel{ID: 2}, PublicID: 9002, Email: "ana@example.com", Name: "Ana", Role: model.UserRoleTrainee, Timezone: "Asia/Manila"},
		&model.User{BaseModel: model.BaseModel{ID: 3}, PublicID: 9003, Email: "ben@example.com", Name: "Ben", Role: model.UserRoleTrainee, Timezone: "Asia/Manila"},
		&model.User{BaseModel: model.BaseModel{ID: 4}, PublicID: 9004, Email: "carl@example.com", Name: "Carl", Role: model.UserRoleTrainee, Timezone: "Asia/Manila"},
	)

	repo := newFakeAttendanceRepo()
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, loc)
	svc := newTeamService(repo, users, func() time.Time { return now })
	return svc, repo, users, now
}

func seedLog(t *testing.T, repo *fakeAttendanceRepo, userID int64, date time.Time, in, out string, hours *float64) {
	t.Helper()
	log := &model.AttendanceLog{UserID: userID, Date: date}
	cols := []string{}
	if in != "" {
		log.TimeIn = &in
		cols = append(cols, "time_in")
	}
	if out != "" {
		log.TimeOut = &out
		cols = append(cols, "time_out")
	}
	if hours != nil {
		log.TotalHours = hours
		cols = append(cols, "total_hours")
	}
	require.NoError(t, repo.Upsert(context.Background(), log, cols))
}

func TestTeamOverviewClassifiesMembers(t *testing.T) {
	svc, repo, _, now := newTeamFixture(t)
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, now.Location())

	eight := 8.0
	// Ana 完整打卡，Ben 缺下班卡，Carl 整天没来
	seedLog(t, repo, 2, today, "08:00:00", "17:00:00", &eight)
	seedLog(t, repo, 3, today, "09:15:00", "", nil)

	overview, err := svc.Overview(context.Background(), 9001, "")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", overview.Date)
	assert.Equal(t, 1, overview.CompleteCount)
	assert.Equal(t, 1, overview.MissingOutCount)
	assert.Equal(t, 1, overview.AbsentCount)
	require.Len(t, overview.Members, 3)

	byName := make(map[string]string, len(overview.Members))
	for _, m := range overview.Members {
		byName[m.Name] = m.Status
	}
	assert.Equal(t, string(model.AttendanceCompleted), byName["Ana"])
	assert.Equal(t, string(model.AttendanceInProgress), byName["Ben"])
	assert.Equal(t, string(model.AttendanceNotStarted), byName["Carl"])
}

func TestTeamOverviewForPastDate(t *testing.T) {
	svc, repo, _, now := newTeamFixture(t)
	friday := time.Date(2026, 2, 27, 0, 0, 0, 0, now.Location())

	four := 4.0
	seedLog(t, repo, 2, friday, "08:00:00", "12:00:00", &four)

	overview, err := svc.Overview(context.Background(), 9001, "2026-02-27")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-27", overview.Date)
	assert.Equal(t, 1, overview.CompleteCount)
	assert.Equal(t, 2, overview.AbsentCount)
}

func TestTeamOverviewRejectsTrainee(t *testing.T) {
	svc, _, _, _ := newTeamFixture(t)

	_, err := svc.Overview(context.Background(), 9002, "")
	assert.ErrorIs(t, err, errors.RoleForbidden)
}

func TestTeamOverviewRejectsBadDate(t *testing.T) {
	svc, _, _, _ := newTeamFixture(t)

	_, err := svc.Overview(context.Background(), 9001, "Feb 27")
	assert.ErrorIs(t, err, errors.InvalidDate)
}

func TestTeamOverviewUnknownViewer(t *testing.T) {
	svc, _, _, _ := newTeamFixture(t)

	_, err := svc.Overview(context.Background(), 404404, "")
	assert.ErrorIs(t, err, errors.UserNotFound)
}
