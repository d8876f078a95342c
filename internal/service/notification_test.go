package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimedIn/internal/model"
	"TimedIn/pkg/sms"
)

func strPtr(s string) *string { return &s }

func TestSendMissingTimeOutAlertNotifiesReachableHeads(t *testing.T) {
	users := newFakeUserRepo(
		&model.User{BaseModel: model.BaseModel{ID: 1}, PublicID: 9001, Email: "head1@example.com", Name: "Head One", Role: model.UserRoleHead, AlertPhone: strPtr("+639170000001")},
		&model.User{BaseModel: model.BaseModel{ID: 2}, PublicID: 9005, Email: "head2@example.com", Name: "Head Two", Role: model.UserRoleHead}, // 未配置告警手机号
		&model.User{BaseModel: model.BaseModel{ID: 3}, PublicID: 9002, Email: "ana@example.com", Name: "Ana", Role: model.UserRoleTrainee},
	)
	mock := sms.NewMockClient()
	svc := newNotificationService(users, mock)

	err := svc.SendMissingTimeOutAlert(context.Background(), model.MissingTimeOutAlertMessage{
		BatchID:     "batch-a",
		SweepDate:   "2026-03-02",
		UserID:      9002,
		TraineeName: "Ana",
		TimeIn:      "08:30:00",
	})
	require.NoError(t, err)

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls[0]
	assert.Equal(t, "+639170000001", call.Phone)
	assert.Contains(t, call.TemplateParam, `"trainee":"Ana"`)
	assert.Contains(t, call.TemplateParam, `"date":"2026-03-02"`)
	assert.Contains(t, call.TemplateParam, `"time_in":"08:30:00"`)
}

func TestSendMissingTimeOutAlertToleratesSendFailure(t *testing.T) {
	users := newFakeUserRepo(
		&model.User{BaseModel: model.BaseModel{ID: 1}, PublicID: 9001, Email: "head1@example.com", Name: "Head One", Role: model.UserRoleHead, AlertPhone: strPtr("+639170000001")},
	)
	mock := sms.NewMockClient()
	mock.FailNext = true
	svc := newNotificationService(users, mock)

	// 发送失败只记日志，消费侧不因此重投
	err := svc.SendMissingTimeOutAlert(context.Background(), model.MissingTimeOutAlertMessage{
		SweepDate:   "2026-03-02",
		UserID:      9002,
		TraineeName: "Ana",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestSendMissingTimeOutAlertNoHeads(t *testing.T) {
	users := newFakeUserRepo(
		&model.User{BaseModel: model.BaseModel{ID: 3}, PublicID: 9002, Email: "ana@example.com", Name: "Ana", Role: model.UserRoleTrainee},
	)
	mock := sms.NewMockClient()
	svc := newNotificationService(users, mock)

	err := svc.SendMissingTimeOutAlert(context.Background(), model.MissingTimeOutAlertMessage{SweepDate: "2026-03-02", UserID: 9002})
	require.NoError(t, err)
	assert.Zero(t, mock.CallCount())
}
