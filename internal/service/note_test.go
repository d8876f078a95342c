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

type noteFixture struct {
	svc   *NoteService
	repo  *fakeAttendanceRepo
	users *fakeUserRepo
	now   time.Time
}

func newNoteFixture(t *testing.T) *noteFixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	f := &noteFixture{
		repo:  newFakeAttendanceRepo(),
		users: newFakeUserRepo(&model.User{BaseModel: model.BaseModel{ID: testUserID}, PublicID: testPublicID, Email: "trainee@example.com", Name: "Trainee", Role: model.UserRoleTrainee, Timezone: "Asia/Manila"}),
		now:   time.Date(2026, 3, 2, 17, 30, 0, 0, loc),
	}
	f.svc = newNoteService(f.repo, f.users, newFakeStatusCache(), func() time.Time { return f.now })
	return f
}

func TestSaveTodayNoteOnce(t *testing.T) {
	f := newNoteFixture(t)

	note, err := f.svc.SaveTodayNote(context.Background(), testPublicID, "finished module three")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", note.Date)
	require.NotNil(t, note.Content)
	assert.Equal(t, "finished module three", *note.Content)

	// 当天第二次提交被拒，改笔记要走日历入口
	_, err = f.svc.SaveTodayNote(context.Background(), testPublicID, "second attempt")
	assert.ErrorIs(t, err, errors.NoteAlreadySaved)

	row, repoErr := f.repo.GetByUserAndDate(context.Background(), testUserID, f.now)
	require.NoError(t, repoErr)
	assert.Equal(t, "finished module three", *row.WorkNotes)
}

func TestSaveTodayNoteDoesNotTouchClockFields(t *testing.T) {
	f := newNoteFixture(t)

	in := "08:30:00"
	require.NoError(t, f.repo.Upsert(context.Background(), &model.AttendanceLog{
		UserID: testUserID,
		Date:   time.Date(2026, 3, 2, 0, 0, 0, 0, f.now.Location()),
		TimeIn: &in,
	}, []string{"time_in"}))

	_, err := f.svc.SaveTodayNote(context.Background(), testPublicID, "note alongside open session")
	require.NoError(t, err)

	row, repoErr := f.repo.GetByUserAndDate(context.Background(), testUserID, f.now)
	require.NoError(t, repoErr)
	assert.Equal(t, "08:30:00", *row.TimeIn)
	assert.Equal(t, "note alongside open session", *row.WorkNotes)
}

func TestCalendarNoteOverwritesPastDate(t *testing.T) {
	f := newNoteFixture(t)

	note, err := f.svc.UpsertNoteForDate(context.Background(), testPublicID, "2026-02-27", "first version")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-27", note.Date)

	// 日历入口允许覆盖
	note, err = f.svc.UpsertNoteForDate(context.Background(), testPublicID, "2026-02-27", "revised version")
	require.NoError(t, err)
	assert.Equal(t, "revised version", *note.Content)

	got, err := f.svc.GetNote(context.Background(), testPublicID, "2026-02-27")
	require.NoError(t, err)
	require.NotNil(t, got.Content)
	assert.Equal(t, "revised version", *got.Content)
}

func TestCalendarNoteRejectsFutureDate(t *testing.T) {
	f := newNoteFixture(t)

	_, err := f.svc.UpsertNoteForDate(context.Background(), testPublicID, "2026-03-03", "time traveler")
	assert.ErrorIs(t, err, errors.NoteDateInFuture)

	// 今天算有效日期
	_, err = f.svc.UpsertNoteForDate(context.Background(), testPublicID, "2026-03-02", "still today")
	assert.NoError(t, err)
}

func TestCalendarNoteRejectsMalformedDate(t *testing.T) {
	f := newNoteFixture(t)

	_, err := f.svc.UpsertNoteForDate(context.Background(), testPublicID, "03/02/2026", "bad format")
	assert.ErrorIs(t, err, errors.InvalidDate)

	_, err = f.svc.GetNote(context.Background(), testPublicID, "not-a-date")
	assert.ErrorIs(t, err, errors.InvalidDate)
}

func TestGetNoteEmptyDay(t *testing.T) {
	f := newNoteFixture(t)

	note, err := f.svc.GetNote(context.Background(), testPublicID, "2026-02-20")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-20", note.Date)
	assert.Nil(t, note.Content)
}
