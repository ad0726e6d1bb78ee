package service

import (
	"context"
	"errors"
	"fmt"
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

// ── 排课模块业务错误 ──

var (
	ErrPlacementNotFound    = errors.New("排课不存在")
	ErrPlacementDateInvalid = errors.New("排课日期格式无效")
)

// PlacementService 排课业务接口
type PlacementService interface {
	Create(ctx context.Context, req *dto.CreatePlacementRequest, callerID string) (*dto.PlacementResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PlacementResponse, error)
	List(ctx context.Context) ([]dto.PlacementResponse, error)
	ListByCourse(ctx context.Context, courseID string) ([]dto.PlacementResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePlacementRequest, callerID string) (*dto.PlacementResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type placementService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPlacementService 创建 PlacementService 实例
func NewPlacementService(repo *repository.Repository, logger *zap.Logger) PlacementService {
	return &placementService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

// Create 校验并落库新排课；与任何已有排课冲突则整体拒绝，不产生写入
func (s *placementService) Create(ctx context.Context, req *dto.CreatePlacementRequest, callerID string) (*dto.PlacementResponse, error) {
	validFrom, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		return nil, ErrPlacementDateInvalid
	}
	validTo, err := time.Parse("2006-01-02", req.ValidTo)
	if err != nil {
		return nil, ErrPlacementDateInvalid
	}

	placement := &model.Placement{
		PlacementID: uuid.NewString(),
		CourseID:    req.CourseID,
		DayOfWeek:   req.DayOfWeek,
		WeekParity:  req.WeekParity,
		ValidFrom:   timeutil.DateOnly(validFrom),
		ValidTo:     timeutil.DateOnly(validTo),
	}
	placement.CreatedBy = &callerID
	placement.UpdatedBy = &callerID

	if problems := validatePlacement(placement); len(problems) > 0 {
		return nil, pkgerrors.NewValidation(problems)
	}

	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", req.CourseID), zap.Error(err))
		return nil, err
	}
	placement.Course = course

	if err := s.checkConflicts(ctx, placement, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Placement.Create(ctx, placement); err != nil {
		s.logger.Error("创建排课失败", zap.Error(err))
		return nil, err
	}

	return toPlacementResponse(placement), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *placementService) GetByID(ctx context.Context, id string) (*dto.PlacementResponse, error) {
	placement, err := s.repo.Placement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlacementNotFound
		}
		s.logger.Error("查询排课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toPlacementResponse(placement), nil
}

// ────────────────────── List ──────────────────────

func (s *placementService) List(ctx context.Context) ([]dto.PlacementResponse, error) {
	placements, err := s.repo.Placement.List(ctx)
	if err != nil {
		s.logger.Error("列出排课失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PlacementResponse, 0, len(placements))
	for i := range placements {
		result = append(result, *toPlacementResponse(&placements[i]))
	}

	return result, nil
}

// ────────────────────── ListByCourse ──────────────────────

func (s *placementService) ListByCourse(ctx context.Context, courseID string) ([]dto.PlacementResponse, error) {
	placements, err := s.repo.Placement.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("按课程列出排课失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.PlacementResponse, 0, len(placements))
	for i := range placements {
		result = append(result, *toPlacementResponse(&placements[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *placementService) Update(ctx context.Context, id string, req *dto.UpdatePlacementRequest, callerID string) (*dto.PlacementResponse, error) {
	placement, err := s.repo.Placement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlacementNotFound
		}
		s.logger.Error("查询排课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.CourseID != nil {
		placement.CourseID = *req.CourseID
		placement.Course = nil
	}
	if req.DayOfWeek != nil {
		placement.DayOfWeek = *req.DayOfWeek
	}
	if req.WeekParity != nil {
		placement.WeekParity = *req.WeekParity
	}
	if req.ValidFrom != nil {
		validFrom, err := time.Parse("2006-01-02", *req.ValidFrom)
		if err != nil {
			return nil, ErrPlacementDateInvalid
		}
		placement.ValidFrom = timeutil.DateOnly(validFrom)
	}
	if req.ValidTo != nil {
		validTo, err := time.Parse("2006-01-02", *req.ValidTo)
		if err != nil {
			return nil, ErrPlacementDateInvalid
		}
		placement.ValidTo = timeutil.DateOnly(validTo)
	}

	if problems := validatePlacement(placement); len(problems) > 0 {
		return nil, pkgerrors.NewValidation(problems)
	}

	if placement.Course == nil {
		course, err := s.repo.Course.GetByID(ctx, placement.CourseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			s.logger.Error("查询课程失败", zap.String("id", placement.CourseID), zap.Error(err))
			return nil, err
		}
		placement.Course = course
	}

	if err := s.checkConflicts(ctx, placement, id); err != nil {
		return nil, err
	}

	placement.UpdatedBy = &callerID

	if err := s.repo.Placement.Update(ctx, placement); err != nil {
		s.logger.Error("更新排课失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toPlacementResponse(placement), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 软删除排课；若仍被调课引用则拒绝
func (s *placementService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Placement.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlacementNotFound
		}
		s.logger.Error("查询排课失败", zap.String("id", id), zap.Error(err))
		return err
	}

	overrideIDs, err := s.repo.Override.ListIDsByPlacement(ctx, id)
	if err != nil {
		s.logger.Error("查询排课关联调课失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if len(overrideIDs) > 0 {
		return &pkgerrors.ReferentialError{EntityID: id, Dependents: overrideIDs}
	}

	if err := s.repo.Placement.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除排课失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── 冲突检测 ──────────────────────

// checkConflicts 将候选排课与全部已有排课逐一比对
// skipID 非空时跳过自身（更新场景）
func (s *placementService) checkConflicts(ctx context.Context, candidate *model.Placement, skipID string) error {
	existing, err := s.repo.Placement.List(ctx)
	if err != nil {
		s.logger.Error("冲突检测加载排课失败", zap.Error(err))
		return err
	}

	for i := range existing {
		other := &existing[i]
		if other.PlacementID == skipID {
			continue
		}
		if conflict, resource := placementsConflict(candidate, other); conflict {
			return &pkgerrors.ConflictError{
				RecordID: candidate.PlacementID,
				OtherID:  other.PlacementID,
				Resource: resource,
				Detail:   fmt.Sprintf("星期%d %s-%s", candidate.DayOfWeek, candidate.Course.StartTime, candidate.Course.EndTime),
			}
		}
	}

	return nil
}

// ────────────────────── 转换 ──────────────────────

func toPlacementResponse(p *model.Placement) *dto.PlacementResponse {
	resp := &dto.PlacementResponse{
		ID:         p.PlacementID,
		CourseID:   p.CourseID,
		DayOfWeek:  p.DayOfWeek,
		WeekParity: p.WeekParity,
		ValidFrom:  p.ValidFrom.Format("2006-01-02"),
		ValidTo:    p.ValidTo.Format("2006-01-02"),
		Version:    p.Version,
		CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:  p.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if p.Course != nil {
		resp.Course = toCourseResponse(p.Course)
	}
	return resp
}
