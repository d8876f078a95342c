package service

import (
	"math"
	"sync"
	"time"

	"TimedIn/internal/model"
	"TimedIn/internal/model/dto"
	"TimedIn/utils"
)

type AggregateService struct{}

var (
	aggregateService *AggregateService
	aggregateOnce    sync.Once
)

func Aggregate() *AggregateService {
	aggregateOnce.Do(func() {
		aggregateService = &AggregateService{}
	})
	return aggregateService
}

// RecordMinutes 计算单日记录的工时分钟数
// 优先使用落库的 total_hours，缺失时由打卡片段重算
// 当天仍在进行中的会话按 now 计已过分钟，往日遗留的未下班记录
// 和两个片段都拿不到的记录返回 ok=false，未知时长不等于零时长
func (s *AggregateService) RecordMinutes(log *model.AttendanceLog, now time.Time, loc *time.Location) (int, bool) {
	if log == nil {
		return 0, false
	}

	if log.TotalHours != nil {
		minutes := int(math.Round(*log.TotalHours * 60))
		if minutes < 0 {
			return 0, false
		}
		return minutes, true
	}

	if log.TimeIn == nil {
		return 0, false
	}

	dateKey := log.DateKey()
	in, okIn := utils.CombineDateTime(dateKey, *log.TimeIn, loc)
	if !okIn {
		return 0, false
	}

	var end time.Time
	if log.TimeOut != nil {
		out, okOut := utils.CombineDateTime(dateKey, *log.TimeOut, loc)
		if !okOut {
			return 0, false
		}
		end = out
	} else {
		// 开放会话只对当天有效，往日缺下班卡的行等巡检补零
		local := now.In(loc)
		if dateKey != utils.DateKey(local) {
			return 0, false
		}
		end = local
	}

	diff := end.Sub(in)
	if diff < 0 {
		// 片段乱序的残缺数据，当作未知处理
		return 0, false
	}

	return int(math.Round(diff.Minutes())), true
}

// HoursFromMinutes 分钟转小时，保留两位小数
func (s *AggregateService) HoursFromMinutes(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}

// WeeklySummary 汇总以 today 为终点、向前 windowDays 天的记录
// 窗口外的记录直接忽略，当天未下班的开放会话计到当前时刻
func (s *AggregateService) WeeklySummary(logs []*model.AttendanceLog, today time.Time, windowDays int, loc *time.Location) dto.WeeklySummaryData {
	if windowDays <= 0 {
		windowDays = 7
	}

	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	start := end.AddDate(0, 0, -(windowDays - 1))

	totalMinutes := 0
	daysPresent := 0

	for _, log := range logs {
		day, ok := utils.ParseDateKey(log.DateKey(), today.Location())
		if !ok || day.Before(start) || day.After(end) {
			continue
		}

		minutes, known := s.RecordMinutes(log, today, loc)
		if known {
			totalMinutes += minutes
		}

		// 出勤按打过上班卡计，巡检补零和仍在进行中的行都算出勤
		// 只存了时长没存片段的历史行按时长是否为正判断
		if log.TimeIn != nil || (known && minutes > 0) {
			daysPresent++
		}
	}

	averageHours := 0.0
	if daysPresent > 0 {
		averageHours = math.Round(float64(totalMinutes)/float64(daysPresent)/60*100) / 100
	}

	return dto.WeeklySummaryData{
		WindowStart:  utils.DateKey(start),
		WindowEnd:    utils.DateKey(end),
		TotalMinutes: totalMinutes,
		TotalHours:   s.HoursFromMinutes(totalMinutes),
		DaysPresent:  daysPresent,
		AverageHours: averageHours,
	}
}

// Progress 计算相对累计目标的完成进度
// 当天的开放会话计到当前时刻，完成小时数先按目标封顶再换算百分比
// 目标非正时进度恒为 0
func (s *AggregateService) Progress(logs []*model.AttendanceLog, targetHours int, now time.Time, loc *time.Location) dto.ProgressData {
	totalMinutes := 0
	daysLogged := 0

	for _, log := range logs {
		minutes, known := s.RecordMinutes(log, now, loc)
		if known {
			totalMinutes += minutes
		}
		if log.TimeIn != nil || (known && minutes > 0) {
			daysLogged++
		}
	}

	completedHours := s.HoursFromMinutes(totalMinutes)

	progress := dto.ProgressData{
		TargetHours:    targetHours,
		CompletedHours: completedHours,
		DaysLogged:     daysLogged,
	}

	if targetHours <= 0 {
		return progress
	}

	clamped := math.Min(completedHours, float64(targetHours))
	progress.ProgressPercent = math.Round(clamped/float64(targetHours)*100*100) / 100
	progress.RemainingHours = math.Round((float64(targetHours)-completedHours)*100) / 100
	if progress.RemainingHours < 0 {
		progress.RemainingHours = 0
	}

	return progress
}
