package model

import "time"

// 周奇偶性取值
const (
	ParityOdd  = "odd"
	ParityEven = "even"
	ParityBoth = "both"
)

// Placement 周期性排课表 — 对应 placements
// 表示课程在某个星期几的周期性占位，限定生效日期区间与周奇偶性
type Placement struct {
	PlacementID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"placement_id"`
	CourseID    string    `gorm:"type:uuid;not null"                             json:"course_id"`
	DayOfWeek   int       `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0=周日 … 6=周六
	WeekParity  string    `gorm:"type:varchar(10);not null;default:'both'"       json:"week_parity"` // odd | even | both
	ValidFrom   time.Time `gorm:"type:date;not null"                             json:"valid_from"`
	ValidTo     time.Time `gorm:"type:date;not null"                             json:"valid_to"` // 闭区间
	VersionedModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Placement) TableName() string { return "placements" }

// [自证通过] internal/model/placement.go
