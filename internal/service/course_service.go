package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ziyi127/TimeNest-sub000/internal/dto"
	"github.com/ziyi127/TimeNest-sub000/internal/model"
	"github.com/ziyi127/TimeNest-sub000/internal/repository"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
)

// ── 课程模块业务错误 ──

var ErrCourseNotFound = errors.New("课程不存在")

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course := &model.Course{
		CourseID:  uuid.NewString(),
		Name:      req.Name,
		Teacher:   req.Teacher,
		Location:  req.Location,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	if problems := validateCourse(course); len(problems) > 0 {
		return nil, pkgerrors.NewValidation(problems)
	}

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Teacher != nil {
		course.Teacher = *req.Teacher
	}
	if req.Location != nil {
		course.Location = *req.Location
	}
	if req.StartTime != nil {
		course.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		course.EndTime = *req.EndTime
	}

	if problems := validateCourse(course); len(problems) > 0 {
		return nil, pkgerrors.NewValidation(problems)
	}

	course.UpdatedBy = &callerID

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 软删除课程；若仍被排课、调课或轮换槽位引用则拒绝
func (s *courseService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Course.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	var dependents []string

	placementIDs, err := s.repo.Placement.ListIDsByCourse(ctx, id)
	if err != nil {
		s.logger.Error("查询课程关联排课失败", zap.String("id", id), zap.Error(err))
		return err
	}
	dependents = append(dependents, placementIDs...)

	overrideIDs, err := s.repo.Override.ListIDsByReplacementCourse(ctx, id)
	if err != nil {
		s.logger.Error("查询课程关联调课失败", zap.String("id", id), zap.Error(err))
		return err
	}
	dependents = append(dependents, overrideIDs...)

	slotIDs, err := s.repo.Rotation.ListSlotIDsByCourse(ctx, id)
	if err != nil {
		s.logger.Error("查询课程关联轮换槽位失败", zap.String("id", id), zap.Error(err))
		return err
	}
	dependents = append(dependents, slotIDs...)

	if len(dependents) > 0 {
		return &pkgerrors.ReferentialError{EntityID: id, Dependents: dependents}
	}

	if err := s.repo.Course.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── 转换 ──────────────────────

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:        c.CourseID,
		Name:      c.Name,
		Teacher:   c.Teacher,
		Location:  c.Location,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		Version:   c.Version,
		CreatedAt: c.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: c.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
