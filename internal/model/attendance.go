package model

import (
	"time"

	"TimedIn/utils"
)

// AttendanceStatus 当日考勤状态（派生值，不落库）
type AttendanceStatus string

const (
	AttendanceNotStarted AttendanceStatus = "not_started" // 未打卡
	AttendanceInProgress AttendanceStatus = "in_progress" // 已上班打卡，未下班
	AttendanceCompleted  AttendanceStatus = "completed"   // 当日已完成，次日重置
)

// AttendanceLog 考勤记录模型，每 (user, date) 至多一行，靠 upsert 合并写入
type AttendanceLog struct {
	BaseModel
	UserID int64     `gorm:"not null;uniqueIndex:idx_attendance_user_date" json:"user_id"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:idx_attendance_user_date" json:"date"`

	// 墙钟时间片段（HH:MM:SS，无日期），与 date 组合得到时刻
	TimeIn  *string `gorm:"type:time" json:"time_in,omitempty"`
	TimeOut *string `gorm:"type:time" json:"time_out,omitempty"`

	// 预计算时长（小时，两位小数）。派生值，可能缺失，缺失时由片段重算
	TotalHours *float64 `gorm:"type:numeric(6,2)" json:"total_hours,omitempty"`

	WorkNotes *string `gorm:"type:text" json:"work_notes,omitempty"`
}

// TableName 指定表名
func (AttendanceLog) TableName() string {
	return "attendance_logs"
}

// DateKey 返回日期键（YYYY-MM-DD）
func (a *AttendanceLog) DateKey() string {
	return utils.DateKey(a.Date)
}

// Status 从行内容派生当日状态
func (a *AttendanceLog) Status() AttendanceStatus {
	if a == nil || a.TimeIn == nil || *a.TimeIn == "" {
		return AttendanceNotStarted
	}
	if a.TimeOut == nil || *a.TimeOut == "" {
		return AttendanceInProgress
	}
	return AttendanceCompleted
}
