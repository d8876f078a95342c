package utils

import (
	"time"
)

const (
	dateKeyLayout  = "2006-01-02"
	fragmentLayout = "15:04:05"
)

// 历史数据中存在 12 小时制的时间串，组合解析失败时逐个兜底
var legacyLayouts = []string{
	"2006-01-02 3:04:05 PM",
	"2006-01-02 3:04 PM",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeFragment 将 HH:MM 形式补齐为 HH:MM:SS
func NormalizeFragment(fragment string) string {
	if len(fragment) == 5 {
		return fragment + ":00"
	}
	return fragment
}

// CombineDateTime 将日期键（YYYY-MM-DD）和墙钟时间片段（HH:MM 或 HH:MM:SS）
// 组合成指定时区内当天的时刻。输入非法时回退到历史格式解析，仍失败则返回
// ok=false，绝不 panic。
func CombineDateTime(dateKey, fragment string, loc *time.Location) (time.Time, bool) {
	if dateKey == "" || fragment == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	normalized := NormalizeFragment(fragment)
	t, err := time.ParseInLocation(dateKeyLayout+" "+fragmentLayout, dateKey+" "+normalized, loc)
	if err == nil {
		return t, true
	}

	for _, layout := range legacyLayouts {
		t, err = time.ParseInLocation(layout, dateKey+" "+fragment, loc)
		if err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ToFragment 输出补零的 HH:MM:SS 墙钟片段
func ToFragment(t time.Time) string {
	return t.Format(fragmentLayout)
}

// DateKey 输出本地日历日期键（YYYY-MM-DD）
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey 解析日期键为指定时区的零点时刻
func ParseDateKey(dateKey string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateKeyLayout, dateKey, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
