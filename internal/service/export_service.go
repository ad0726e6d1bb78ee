package service

import (
	"context"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/ziyi127/TimeNest-sub000/internal/dto"
)

// ExportService 课表导出接口
type ExportService interface {
	// ExportICS 将日期区间的课表导出为 iCalendar 文本
	// 只读预览，不消费任何一次性调课。
	ExportICS(ctx context.Context, start, end time.Time) (string, error)
}

type exportService struct {
	schedule ScheduleService
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(schedule ScheduleService, logger *zap.Logger) ExportService {
	return &exportService{schedule: schedule, logger: logger}
}

// ────────────────────── ExportICS ──────────────────────

func (s *exportService) ExportICS(ctx context.Context, start, end time.Time) (string, error) {
	days, err := s.schedule.ResolveRange(ctx, start, end)
	if err != nil {
		return "", err
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//TimeNest//Timetable//CN")

	count := 0
	for _, day := range days {
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			return "", fmt.Errorf("解析日期 %q 失败: %w", day.Date, err)
		}
		for _, e := range day.Entries {
			startAt, err := wallClockOn(date, e.StartTime)
			if err != nil {
				return "", err
			}
			endAt, err := wallClockOn(date, e.EndTime)
			if err != nil {
				return "", err
			}

			event := cal.AddEvent(eventUID(day.Date, &e))
			event.SetDtStampTime(time.Now())
			event.SetStartAt(startAt)
			event.SetEndAt(endAt)
			event.SetSummary(e.Course.Name)
			event.SetLocation(e.Course.Location)
			event.SetDescription(fmt.Sprintf("教师：%s", e.Course.Teacher))
			count++
		}
	}

	s.logger.Info("课表已导出",
		zap.String("start", start.Format("2006-01-02")),
		zap.String("end", end.Format("2006-01-02")),
		zap.Int("events", count))

	return cal.Serialize(), nil
}

// eventUID 生成稳定的事件 UID（同一条目重复导出得到同一 UID）
func eventUID(date string, e *dto.ScheduleEntryResponse) string {
	recordID := e.PlacementID
	switch e.Source {
	case SourceOverride:
		recordID = e.OverrideID
	case SourceRotation:
		recordID = e.TemplateID
	}
	return fmt.Sprintf("%s-%s-%s@timenest", date, e.StartTime, recordID)
}

// wallClockOn 将 "HH:MM" 墙钟时间落到指定日期
func wallClockOn(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("解析时间 %q 失败: %w", hhmm, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
