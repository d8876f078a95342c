package dto

// ========== 打卡相关 DTO ==========

// ClockInRequest 上班打卡请求体,坐标允许缺失以区分定位失败
type ClockInRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ConfirmClockOutRequest 确认下班打卡请求体
type ConfirmClockOutRequest struct {
	Confirm bool `json:"confirm"`
}

// TodayStatusData 今日打卡状态
type TodayStatusData struct {
	Date      string   `json:"date"`
	Status    string   `json:"status"`
	TimeIn    *string  `json:"time_in"`
	TimeOut   *string  `json:"time_out"`
	WorkHours *float64 `json:"work_hours"`
	HasNote   bool     `json:"has_note"`
}

// ClockOutPreviewData 下班打卡第一阶段的只读预览
type ClockOutPreviewData struct {
	Date           string  `json:"date"`
	TimeIn         string  `json:"time_in"`
	TimeOutPlanned string  `json:"time_out_planned"`
	WorkHours      float64 `json:"work_hours"`
}

// RecordItem 单日考勤记录
type RecordItem struct {
	Date      string   `json:"date"`
	Status    string   `json:"status"`
	TimeIn    *string  `json:"time_in"`
	TimeOut   *string  `json:"time_out"`
	WorkHours *float64 `json:"work_hours"`
	WorkNotes *string  `json:"work_notes"`
}

// HistoryData 考勤历史列表
type HistoryData struct {
	Records []RecordItem `json:"records"`
	Total   int          `json:"total"`
}

// WeeklySummaryData 最近七天汇总
type WeeklySummaryData struct {
	WindowStart  string  `json:"window_start"`
	WindowEnd    string  `json:"window_end"`
	TotalMinutes int     `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	DaysPresent  int     `json:"days_present"`
	AverageHours float64 `json:"average_hours"`
}

// ProgressData 累计进度
type ProgressData struct {
	TargetHours     int     `json:"target_hours"`
	CompletedHours  float64 `json:"completed_hours"`
	RemainingHours  float64 `json:"remaining_hours"`
	ProgressPercent float64 `json:"progress_percent"`
	DaysLogged      int     `json:"days_logged"`
}

// NoteRequest 保存当日笔记请求体
type NoteRequest struct {
	Content string `json:"content"`
}

// CalendarNoteRequest 按日期写笔记请求体
type CalendarNoteRequest struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// NoteData 单日笔记
type NoteData struct {
	Date    string  `json:"date"`
	Content *string `json:"content"`
}
