package repository

import (
	"fmt"
	"os"

	"gorm.io/gen"

	"TimedIn/internal/model"
	"TimedIn/storage/database"
)

// ========== User 相关查询接口 ==========

// UserQuerier 用户查询接口
type UserQuerier interface {
	// GetByEmail 根据邮箱查询用户
	//
	// SELECT * FROM @@table WHERE email = @email LIMIT 1
	GetByEmail(email string) (*gen.T, error)

	// GetByPublicID 根据 PublicID 查询用户（API 中 userID 是 public_id）
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// ListByRole 根据角色查询用户列表（团队视图和定时任务）
	//
	// SELECT * FROM @@table
	// WHERE role = @role
	// ORDER BY name ASC
	// {{if limit > 0}}
	// LIMIT @limit
	// {{end}}
	ListByRole(role string, limit int) ([]*gen.T, error)
}

// ========== AttendanceLog 相关查询接口 ==========

// AttendanceLogQuerier 考勤记录查询接口
type AttendanceLogQuerier interface {
	// GetByUserIDAndDate 根据用户ID和日期查询考勤记录
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID AND date = @date::date
	// LIMIT 1
	GetByUserIDAndDate(userID int64, date string) (*gen.T, error)

	// ListByUserID 按用户查询考勤记录（倒序分页）
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	// ORDER BY date DESC
	// LIMIT @limit
	ListByUserID(userID int64, limit int) ([]*gen.T, error)

	// ListByUserIDAndDateRange 按用户和日期范围查询考勤记录
	//
	// SELECT * FROM @@table
	// WHERE user_id = @userID
	//   AND date >= @fromDate::date
	//   AND date <= @toDate::date
	// ORDER BY date DESC
	ListByUserIDAndDateRange(userID int64, fromDate, toDate string) ([]*gen.T, error)

	// ListByDate 查询某天全部考勤记录（团队视图）
	//
	// SELECT * FROM @@table
	// WHERE date = @date::date
	ListByDate(date string) ([]*gen.T, error)

	// ListMissingTimeOut 查询某天已上班未下班且尚未补零的记录（用于巡检任务）
	//
	// SELECT * FROM @@table
	// WHERE date = @date::date
	//   AND time_in IS NOT NULL
	//   AND time_out IS NULL
	//   AND total_hours IS NULL
	// LIMIT @limit
	ListMissingTimeOut(date string, limit int) ([]*gen.T, error)
}

func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// 运行数据库迁移（确保表存在）
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migration: %w", err)
	}

	db := database.DB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/repository/query", // 生成代码的输出路径
		ModelPkgPath:      "TimedIn/internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true, // 字段可以为 null
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	// 注册现有的 model，GORM Gen 会使用这些 model 而不是生成新的
	g.ApplyBasic(
		&model.User{},
		&model.AttendanceLog{},
	)

	g.ApplyInterface(func(UserQuerier) {}, &model.User{})
	g.ApplyInterface(func(AttendanceLogQuerier) {}, &model.AttendanceLog{})

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}
