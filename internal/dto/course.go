package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Name      string `json:"name"       binding:"required,min=1,max=100"`
	Teacher   string `json:"teacher"    binding:"required,min=1,max=50"`
	Location  string `json:"location"   binding:"required,min=1,max=100"`
	StartTime string `json:"start_time" binding:"required"` // "08:00"
	EndTime   string `json:"end_time"   binding:"required"` // "09:40"
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=1,max=100"`
	Teacher   *string `json:"teacher"    binding:"omitempty,min=1,max=50"`
	Location  *string `json:"location"   binding:"omitempty,min=1,max=100"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Teacher   string `json:"teacher"`
	Location  string `json:"location"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// [自证通过] internal/dto/course.go
