package model

// SweepRequestMessage 收班清扫消息：按日期扫描缺少 time_out 的考勤记录
type SweepRequestMessage struct {
	MessageID    string `json:"message_id"`
	BatchID      string `json:"batch_id"`
	SweepDate    string `json:"sweep_date"` // YYYY-MM-DD
	ScheduledAt  string `json:"scheduled_at"`
	DelaySeconds int    `json:"delay_seconds"`
}

// MissingTimeOutAlertMessage 主管提醒消息：某实训生当日缺少下班打卡
type MissingTimeOutAlertMessage struct {
	MessageID   string `json:"message_id"`
	BatchID     string `json:"batch_id"`
	SweepDate   string `json:"sweep_date"`
	UserID      int64  `json:"user_id"` // public_id
	TraineeName string `json:"trainee_name"`
	TimeIn      string `json:"time_in"`
}
