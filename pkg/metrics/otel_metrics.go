package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 打卡相关指标
	ClockInTotal           metric.Int64Counter
	ClockOutTotal          metric.Int64Counter
	GeofenceRejectionTotal metric.Int64Counter
	WorkHoursRecorded      metric.Float64Histogram

	// 巡检相关指标
	SweepRunTotal       metric.Int64Counter
	SweepMarkedTotal    metric.Int64Counter
	SweepAlertSentTotal metric.Int64Counter

	// 短信相关指标
	SMSSentTotal   metric.Int64Counter
	SMSFailedTotal metric.Int64Counter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("timedin")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	m := &OTelMetrics{}

	m.ClockInTotal, err = meter.Int64Counter(
		"attendance_clock_in_total",
		metric.WithDescription("Total number of successful clock-ins"),
		metric.WithUnit("{clock_in}"),
	)
	if err != nil {
		return err
	}

	m.ClockOutTotal, err = meter.Int64Counter(
		"attendance_clock_out_total",
		metric.WithDescription("Total number of confirmed clock-outs"),
		metric.WithUnit("{clock_out}"),
	)
	if err != nil {
		return err
	}

	m.GeofenceRejectionTotal, err = meter.Int64Counter(
		"attendance_geofence_rejection_total",
		metric.WithDescription("Total number of clock-ins rejected by the geofence"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return err
	}

	m.WorkHoursRecorded, err = meter.Float64Histogram(
		"attendance_work_hours",
		metric.WithDescription("Work hours recorded per completed day"),
		metric.WithUnit("h"),
	)
	if err != nil {
		return err
	}

	m.SweepRunTotal, err = meter.Int64Counter(
		"sweep_run_total",
		metric.WithDescription("Total number of missing time-out sweeps executed"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return err
	}

	m.SweepMarkedTotal, err = meter.Int64Counter(
		"sweep_marked_total",
		metric.WithDescription("Total number of records marked by the sweep"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return err
	}

	m.SweepAlertSentTotal, err = meter.Int64Counter(
		"sweep_alert_sent_total",
		metric.WithDescription("Total number of missing time-out alerts sent"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return err
	}

	m.SMSSentTotal, err = meter.Int64Counter(
		"sms_sent_total",
		metric.WithDescription("Total number of SMS sent"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return err
	}

	m.SMSFailedTotal, err = meter.Int64Counter(
		"sms_failed_total",
		metric.WithDescription("Total number of SMS send failures"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// ========== nil 安全的包级入口，未初始化时静默丢弃 ==========

// RecordClockIn 记录一次成功的上班打卡
func RecordClockIn(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.ClockInTotal.Add(ctx, 1)
	}
}

// RecordClockOut 记录一次确认的下班打卡及当日工时
func RecordClockOut(ctx context.Context, hours float64) {
	if m := GetMetrics(); m != nil {
		m.ClockOutTotal.Add(ctx, 1)
		m.WorkHoursRecorded.Record(ctx, hours)
	}
}

// RecordGeofenceRejection 记录一次围栏拒绝
func RecordGeofenceRejection(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.GeofenceRejectionTotal.Add(ctx, 1)
	}
}

// RecordSweepRun 记录一次巡检执行及标记条数
func RecordSweepRun(ctx context.Context, marked int) {
	if m := GetMetrics(); m != nil {
		m.SweepRunTotal.Add(ctx, 1)
		m.SweepMarkedTotal.Add(ctx, int64(marked))
	}
}

// RecordSweepAlertSent 记录一次缺卡提醒发送
func RecordSweepAlertSent(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.SweepAlertSentTotal.Add(ctx, 1)
	}
}

// RecordSMSSent 记录短信发送结果
func RecordSMSSent(ctx context.Context, provider string, ok bool) {
	m := GetMetrics()
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("provider", provider))
	if ok {
		m.SMSSentTotal.Add(ctx, 1, attrs)
	} else {
		m.SMSFailedTotal.Add(ctx, 1, attrs)
	}
}
