package service

import (
	"time"

	"github.com/ziyi127/TimeNest-sub000/internal/model"
)

// ── 冲突检测纯函数 ──────────────────────────────────────────
//
// 两条排课构成冲突的条件：同一星期、周奇偶性相交（odd×even 以外
// 的任意组合）、生效日期区间相交、时间窗相交，且教师或地点相同。
// 所有判定对参数顺序对称。时间窗比较沿用 "HH:MM" 字符串的
// 字典序（与存储格式一致，无需解析）。
// ─────────────────────────────────────────────────────────────

// timeRangesOverlap 判断两个墙钟时间窗是否相交
func timeRangesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}

// parityOverlap 判断两个周奇偶性是否可能落在同一周
// 仅 odd×even 组合不相交
func parityOverlap(a, b string) bool {
	if a == model.ParityBoth || b == model.ParityBoth {
		return true
	}
	return a == b
}

// dateRangesOverlap 判断两个闭区间日期范围是否相交
func dateRangesOverlap(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !aFrom.After(bTo) && !bFrom.After(aTo)
}

// detectTimeConflict 判断两条排课是否在时间维度上重叠
// （同星期 + 奇偶性相交 + 日期区间相交 + 时间窗相交）
// 任一排课缺失课程信息时视为不可判定，返回 false。
func detectTimeConflict(a, b *model.Placement) bool {
	if a.Course == nil || b.Course == nil {
		return false
	}
	if a.DayOfWeek != b.DayOfWeek {
		return false
	}
	if !parityOverlap(a.WeekParity, b.WeekParity) {
		return false
	}
	if !dateRangesOverlap(a.ValidFrom, a.ValidTo, b.ValidFrom, b.ValidTo) {
		return false
	}
	return timeRangesOverlap(a.Course.StartTime, a.Course.EndTime, b.Course.StartTime, b.Course.EndTime)
}

// detectTeacherConflict 时间重叠且教师相同
func detectTeacherConflict(a, b *model.Placement) bool {
	return detectTimeConflict(a, b) && a.Course.Teacher == b.Course.Teacher
}

// detectRoomConflict 时间重叠且地点相同
func detectRoomConflict(a, b *model.Placement) bool {
	return detectTimeConflict(a, b) && a.Course.Location == b.Course.Location
}

// placementsConflict 完整的排课对冲突判定
// 返回是否冲突及冲突资源（teacher | location）
func placementsConflict(a, b *model.Placement) (bool, string) {
	if detectTeacherConflict(a, b) {
		return true, "teacher"
	}
	if detectRoomConflict(a, b) {
		return true, "location"
	}
	return false, ""
}
