package model

// UserRole 用户角色枚举
type UserRole string

const (
	UserRoleTrainee UserRole = "ojt"   // 实训生
	UserRoleHead    UserRole = "head"  // 带教主管
	UserRoleAdmin   UserRole = "admin" // 管理端
)

// User 用户模型
type User struct {
	BaseModel
	PublicID     int64    `gorm:"uniqueIndex;not null" json:"public_id"`
	Email        string   `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	PasswordHash string   `gorm:"type:varchar(128);not null" json:"-"`
	Name         string   `gorm:"type:varchar(128);not null;default:''" json:"name"`
	Role         UserRole `gorm:"type:varchar(16);not null;default:'ojt';index:idx_users_role" json:"role"`

	// 自定义设置部分
	Timezone string `gorm:"type:varchar(64);not null;default:'Asia/Manila'" json:"timezone"`

	// 实训累计目标（小时）。为空时使用全局 TARGET_HOURS 配置
	RequiredHours *int `gorm:"type:int" json:"required_hours,omitempty"`

	// 主管接收缺卡提醒的手机号，仅 head 角色使用
	AlertPhone *string `gorm:"type:varchar(32)" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// TargetHours 返回该用户生效的累计目标小时数
func (u *User) TargetHours(fallback int) int {
	if u.RequiredHours != nil && *u.RequiredHours > 0 {
		return *u.RequiredHours
	}
	return fallback
}
