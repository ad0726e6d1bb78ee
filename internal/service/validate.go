package service

import (
	"fmt"
	"regexp"

	"github.com/ziyi127/TimeNest-sub000/internal/model"
)

// ── 记录级校验纯函数 ────────────────────────────────────────
//
// 只做单条记录的形状/范围检查，无副作用；跨记录的冲突检测见
// conflict.go。所有写操作在落库前先经过这里。
// ─────────────────────────────────────────────────────────────

// timePattern 墙钟时间格式 "HH:MM"
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// validateCourse 校验课程字段，返回问题列表（空切片表示通过）
func validateCourse(c *model.Course) []string {
	var problems []string

	if c.Name == "" {
		problems = append(problems, "课程名称不能为空")
	}
	if c.Teacher == "" {
		problems = append(problems, "教师不能为空")
	}
	if c.Location == "" {
		problems = append(problems, "地点不能为空")
	}
	if !timePattern.MatchString(c.StartTime) {
		problems = append(problems, fmt.Sprintf("开始时间格式无效: %q，应为 HH:MM", c.StartTime))
	}
	if !timePattern.MatchString(c.EndTime) {
		problems = append(problems, fmt.Sprintf("结束时间格式无效: %q，应为 HH:MM", c.EndTime))
	}
	if timePattern.MatchString(c.StartTime) && timePattern.MatchString(c.EndTime) && c.StartTime >= c.EndTime {
		problems = append(problems, "开始时间必须早于结束时间")
	}

	return problems
}

// validatePlacement 校验排课字段（不含跨记录冲突）
func validatePlacement(p *model.Placement) []string {
	var problems []string

	if p.CourseID == "" {
		problems = append(problems, "课程ID不能为空")
	}
	if p.DayOfWeek < 0 || p.DayOfWeek > 6 {
		problems = append(problems, fmt.Sprintf("星期取值无效: %d，应在 0-6 之间", p.DayOfWeek))
	}
	switch p.WeekParity {
	case model.ParityOdd, model.ParityEven, model.ParityBoth:
	default:
		problems = append(problems, fmt.Sprintf("周奇偶性取值无效: %q，应为 odd/even/both", p.WeekParity))
	}
	if p.ValidFrom.After(p.ValidTo) {
		problems = append(problems, "生效起始日期不能晚于结束日期")
	}

	return problems
}

// validateTemplate 校验轮换模板及其槽位
// 约束：cycle_length >= 1；week_index 落在 [0, cycle_length)；
// 同一 week_index 内 day_of_week 不重复。
func validateTemplate(t *model.RotationTemplate, slots []model.RotationSlot) []string {
	var problems []string

	if t.Name == "" {
		problems = append(problems, "模板名称不能为空")
	}
	if t.CycleLength < 1 {
		problems = append(problems, fmt.Sprintf("循环周数无效: %d，至少为 1", t.CycleLength))
	}
	if t.StartDate.IsZero() {
		problems = append(problems, "轮换起始日期不能为空")
	}

	seen := make(map[string]bool)
	for _, s := range slots {
		if s.WeekIndex < 0 || s.WeekIndex >= t.CycleLength {
			problems = append(problems, fmt.Sprintf("槽位周次索引越界: %d，应在 [0, %d)", s.WeekIndex, t.CycleLength))
		}
		if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
			problems = append(problems, fmt.Sprintf("槽位星期取值无效: %d，应在 0-6 之间", s.DayOfWeek))
		}
		if s.CourseID == "" {
			problems = append(problems, "槽位课程ID不能为空")
		}
		key := fmt.Sprintf("%d:%d", s.WeekIndex, s.DayOfWeek)
		if seen[key] {
			problems = append(problems, fmt.Sprintf("第 %d 周的星期 %d 存在重复槽位", s.WeekIndex, s.DayOfWeek))
		}
		seen[key] = true
	}

	return problems
}
