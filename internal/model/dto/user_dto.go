package dto

// ========== 用户与团队 DTO ==========

// ProfileData 当前用户资料
type ProfileData struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Timezone    string `json:"timezone"`
	TargetHours int    `json:"target_hours"`
}

// UpdateProfileRequest 更新资料请求体
type UpdateProfileRequest struct {
	Name       *string `json:"name"`
	Timezone   *string `json:"timezone"`
	AlertPhone *string `json:"alert_phone"`
}

// TeamMemberRow 团队视图里的单个成员当日状态
type TeamMemberRow struct {
	UserID         int64    `json:"user_id"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	TimeIn         *string  `json:"time_in"`
	TimeOut        *string  `json:"time_out"`
	WorkHours      *float64 `json:"work_hours"`
	CompletedHours float64  `json:"completed_hours"`
}

// TeamOverviewData 负责人团队总览
type TeamOverviewData struct {
	Date            string          `json:"date"`
	Members         []TeamMemberRow `json:"members"`
	CompleteCount   int             `json:"complete_count"`
	MissingOutCount int             `json:"missing_out_count"`
	AbsentCount     int             `json:"absent_count"`
}
