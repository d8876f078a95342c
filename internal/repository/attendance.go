package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"TimedIn/internal/model"
	"TimedIn/storage/database"
)

// AttendanceRepository 考勤记录的存取接口
// service 层通过接口依赖，方便测试时注入内存实现
type AttendanceRepository interface {
	// GetByUserAndDate 查询某用户某天的记录，不存在时返回 (nil, nil)
	GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*model.AttendanceLog, error)

	// Upsert 按 (user_id, date) 冲突键写入，columns 限定冲突时更新的字段
	// 没写进 columns 的字段在已有行上保持原值
	Upsert(ctx context.Context, log *model.AttendanceLog, columns []string) error

	// ListRecent 按日期倒序返回该用户最近 limit 条记录
	ListRecent(ctx context.Context, userID int64, limit int) ([]*model.AttendanceLog, error)

	// ListByDateRange 按日期倒序返回 [from, to] 区间内的记录
	ListByDateRange(ctx context.Context, userID int64, from, to time.Time) ([]*model.AttendanceLog, error)

	// ListAll 按日期倒序返回该用户全部记录（累计进度用），limit 为上限
	ListAll(ctx context.Context, userID int64, limit int) ([]*model.AttendanceLog, error)

	// ListByDate 返回某天全部记录（团队视图）
	ListByDate(ctx context.Context, date time.Time) ([]*model.AttendanceLog, error)

	// ListMissingTimeOut 返回某天已上班未下班且尚未被巡检补零的记录
	// 巡检补零后 total_hours 不再为空，重放消息不会二次命中
	ListMissingTimeOut(ctx context.Context, date time.Time, limit int) ([]*model.AttendanceLog, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository 使用外部传入的 gorm.DB 构造，nil 时回退到全局连接
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	if db == nil {
		db = database.DB()
	}
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*model.AttendanceLog, error) {
	var log model.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date.Format("2006-01-02")).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *attendanceRepository) Upsert(ctx context.Context, log *model.AttendanceLog, columns []string) error {
	updates := make([]string, 0, len(columns)+1)
	updates = append(updates, columns...)
	updates = append(updates, "updated_at")

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(log).Error
}

func (r *attendanceRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]*model.AttendanceLog, error) {
	var logs []*model.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *attendanceRepository) ListByDateRange(ctx context.Context, userID int64, from, to time.Time) ([]*model.AttendanceLog, error) {
	var logs []*model.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?",
			userID, from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("date DESC").
		Find(&logs).Error
	return logs, err
}

func (r *attendanceRepository) ListAll(ctx context.Context, userID int64, limit int) ([]*model.AttendanceLog, error) {
	var logs []*model.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]*model.AttendanceLog, error) {
	var logs []*model.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("date = ?", date.Format("2006-01-02")).
		Find(&logs).Error
	return logs, err
}

func (r *attendanceRepository) ListMissingTimeOut(ctx context.Context, date time.Time, limit int) ([]*model.AttendanceLog, error) {
	var logs []*model.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("date = ? AND time_in IS NOT NULL AND time_out IS NULL AND total_hours IS NULL", date.Format("2006-01-02")).
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
