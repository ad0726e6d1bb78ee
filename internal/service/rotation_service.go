package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ziyi127/TimeNest-sub000/internal/dto"
	"github.com/ziyi127/TimeNest-sub000/internal/model"
	"github.com/ziyi127/TimeNest-sub000/internal/repository"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
	"github.com/ziyi127/TimeNest-sub000/pkg/timeutil"
)

// ── 轮换模板模块业务错误 ──

var (
	ErrTemplateNotFound    = errors.New("轮换模板不存在")
	ErrTemplateDateInvalid = errors.New("轮换模板日期格式无效")
)

// RotationService 轮换模板业务接口
type RotationService interface {
	Create(ctx context.Context, req *dto.CreateRotationTemplateRequest, callerID string) (*dto.RotationTemplateResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RotationTemplateResponse, error)
	List(ctx context.Context) ([]dto.RotationTemplateResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateRotationTemplateRequest, callerID string) (*dto.RotationTemplateResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// Materialize 只读投影：返回模板在指定日期所处周次的槽位
	Materialize(ctx context.Context, id string, date time.Time) (*dto.MaterializeResponse, error)
}

type rotationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRotationService 创建 RotationService 实例
func NewRotationService(repo *repository.Repository, logger *zap.Logger) RotationService {
	return &rotationService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *rotationService) Create(ctx context.Context, req *dto.CreateRotationTemplateRequest, callerID string) (*dto.RotationTemplateResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrTemplateDateInvalid
	}

	template := &model.RotationTemplate{
		TemplateID:  uuid.NewString(),
		Name:        req.Name,
		CycleLength: req.CycleLength,
		StartDate:   timeutil.DateOnly(startDate),
	}
	template.CreatedBy = &callerID
	template.UpdatedBy = &callerID

	slots := make([]model.RotationSlot, 0, len(req.Slots))
	for _, sr := range req.Slots {
		slots = append(slots, model.RotationSlot{
			SlotID:     uuid.NewString(),
			TemplateID: template.TemplateID,
			WeekIndex:  sr.WeekIndex,
			DayOfWeek:  sr.DayOfWeek,
			CourseID:   sr.CourseID,
		})
	}

	if problems := validateTemplate(template, slots); len(problems) > 0 {
		return nil, pkgerrors.NewValidation(problems)
	}

	if err := s.checkSlotCourses(ctx, slots); err != nil {
		return nil, err
	}

	template.Slots = slots

	if err := s.repo.Rotation.Create(ctx, template); err != nil {
		s.logger.Error("创建轮换模板失败", zap.Error(err))
		return nil, err
	}

	return toTemplateResponse(template), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *rotationService) GetByID(ctx context.Context, id string) (*dto.RotationTemplateResponse, error) {
	template, err := s.repo.Rotation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询轮换模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toTemplateResponse(template), nil
}

// ────────────────────── List ──────────────────────

func (s *rotationService) List(ctx context.Context) ([]dto.RotationTemplateResponse, error) {
	templates, err := s.repo.Rotation.List(ctx)
	if err != nil {
		s.logger.Error("列出轮换模板失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RotationTemplateResponse, 0, len(templates))
	for i := range templates {
		result = append(result, *toTemplateResponse(&templates[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

// Update 更新模板字段；提供 slots 时整组替换槽位
func (s *rotationService) Update(ctx context.Context, id string, req *dto.UpdateRotationTemplateRequest, callerID string) (*dto.RotationTemplateResponse, error) {
	template, err := s.repo.Rotation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询轮换模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.CycleLength != nil {
		template.CycleLength = *req.CycleLength
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrTemplateDateInvalid
		}
		template.StartDate = timeutil.DateOnly(startDate)
	}

	slots := template.Slots
	if req.Slots != nil {
		slots = make([]model.RotationSlot, 0, len(req.Slots))
		for _, sr := range req.Slots {
			slots = append(slots, model.RotationSlot{
				SlotID:     uuid.NewString(),
				TemplateID: template.TemplateID,
				WeekIndex:  sr.WeekIndex,
				DayOfWeek:  sr.DayOfWeek,
				CourseID:   sr.CourseID,
			})
		}
	}

	if problems := validateTemplate(template, slots); len(problems) > 0 {
		return nil, pkgerrors.NewValidation(problems)
	}

	if req.Slots != nil {
		if err := s.checkSlotCourses(ctx, slots); err != nil {
			return nil, err
		}
	}

	template.UpdatedBy = &callerID

	if err := s.repo.Rotation.ReplaceSlots(ctx, template, slots); err != nil {
		s.logger.Error("更新轮换模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	template.Slots = slots

	return toTemplateResponse(template), nil
}

// ────────────────────── Delete ──────────────────────

func (s *rotationService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Rotation.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		s.logger.Error("查询轮换模板失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Rotation.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除轮换模板失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Materialize ──────────────────────

// Materialize 计算 date 落在模板循环中的周次，返回该周中星期与 date 一致的槽位。
// 纯投影，不产生任何写入；date 早于模板起始日期时返回空槽位。
func (s *rotationService) Materialize(ctx context.Context, id string, date time.Time) (*dto.MaterializeResponse, error) {
	template, err := s.repo.Rotation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询轮换模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	date = timeutil.DateOnly(date)
	resp := &dto.MaterializeResponse{
		TemplateID: template.TemplateID,
		Date:       date.Format("2006-01-02"),
		Slots:      []dto.RotationSlotResponse{},
	}

	if date.Before(template.StartDate) {
		return resp, nil
	}

	weekIndex := timeutil.RotationIndex(date, template.StartDate, template.CycleLength)
	resp.WeekIndex = weekIndex

	for i := range template.Slots {
		slot := &template.Slots[i]
		if slot.WeekIndex != weekIndex || slot.DayOfWeek != int(date.Weekday()) {
			continue
		}
		resp.Slots = append(resp.Slots, *toSlotResponse(slot))
	}

	return resp, nil
}

// ────────────────────── 辅助 ──────────────────────

// checkSlotCourses 校验每个槽位引用的课程存在
func (s *rotationService) checkSlotCourses(ctx context.Context, slots []model.RotationSlot) error {
	checked := make(map[string]bool)
	for _, slot := range slots {
		if checked[slot.CourseID] {
			continue
		}
		exists, err := s.repo.Course.Exists(ctx, slot.CourseID)
		if err != nil {
			s.logger.Error("查询课程失败", zap.String("id", slot.CourseID), zap.Error(err))
			return err
		}
		if !exists {
			return ErrCourseNotFound
		}
		checked[slot.CourseID] = true
	}
	return nil
}

// ────────────────────── 转换 ──────────────────────

func toSlotResponse(s *model.RotationSlot) *dto.RotationSlotResponse {
	resp := &dto.RotationSlotResponse{
		ID:        s.SlotID,
		WeekIndex: s.WeekIndex,
		DayOfWeek: s.DayOfWeek,
		CourseID:  s.CourseID,
	}
	if s.Course != nil {
		resp.Course = toCourseResponse(s.Course)
	}
	return resp
}

func toTemplateResponse(t *model.RotationTemplate) *dto.RotationTemplateResponse {
	slots := make([]dto.RotationSlotResponse, 0, len(t.Slots))
	for i := range t.Slots {
		slots = append(slots, *toSlotResponse(&t.Slots[i]))
	}
	return &dto.RotationTemplateResponse{
		ID:          t.TemplateID,
		Name:        t.Name,
		CycleLength: t.CycleLength,
		StartDate:   t.StartDate.Format("2006-01-02"),
		Version:     t.Version,
		Slots:       slots,
		CreatedAt:   t.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   t.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
