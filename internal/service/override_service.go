package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ziyi127/TimeNest-sub000/config"
	"github.com/ziyi127/TimeNest-sub000/internal/dto"
	"github.com/ziyi127/TimeNest-sub000/internal/model"
	"github.com/ziyi127/TimeNest-sub000/internal/repository"
	pkgerrors "github.com/ziyi127/TimeNest-sub000/pkg/errors"
	"github.com/ziyi127/TimeNest-sub000/pkg/timeutil"
)

// ── 调课模块业务错误 ──

var (
	ErrOverrideNotFound    = errors.New("调课记录不存在")
	ErrOverrideDateInvalid = errors.New("调课日期格式无效")
)

// OverrideService 调课业务接口
type OverrideService interface {
	Create(ctx context.Context, req *dto.CreateOverrideRequest, callerID string) (*dto.OverrideResponse, error)
	GetByID(ctx context.Context, id string) (*dto.OverrideResponse, error)
	List(ctx context.Context) ([]dto.OverrideResponse, error)
	ListByPlacement(ctx context.Context, placementID string) ([]dto.OverrideResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateOverrideRequest, callerID string) (*dto.OverrideResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type overrideService struct {
	repo      *repository.Repository
	cfg       *config.TimetableConfig
	termStart time.Time
	logger    *zap.Logger
}

// NewOverrideService 创建 OverrideService 实例
func NewOverrideService(repo *repository.Repository, cfg *config.TimetableConfig, logger *zap.Logger) (OverrideService, error) {
	termStart, err := cfg.ParseTermStart()
	if err != nil {
		return nil, ErrTermStartInvalid
	}
	return &overrideService{
		repo:      repo,
		cfg:       cfg,
		termStart: timeutil.DateOnly(termStart),
		logger:    logger,
	}, nil
}

// ────────────────────── Create ──────────────────────

// Create 创建调课记录
// 约束：目标排课与替换课程必须存在，且生效日期落在排课的
// 生效区间内并与排课的星期一致。
func (s *overrideService) Create(ctx context.Context, req *dto.CreateOverrideRequest, callerID string) (*dto.OverrideResponse, error) {
	effectiveDate, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		return nil, ErrOverrideDateInvalid
	}
	effectiveDate = timeutil.DateOnly(effectiveDate)

	placement, err := s.repo.Placement.GetByID(ctx, req.TargetPlacementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlacementNotFound
		}
		s.logger.Error("查询排课失败", zap.String("id", req.TargetPlacementID), zap.Error(err))
		return nil, err
	}

	exists, err := s.repo.Course.Exists(ctx, req.ReplacementCourseID)
	if err != nil {
		s.logger.Error("查询课程失败", zap.String("id", req.ReplacementCourseID), zap.Error(err))
		return nil, err
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	if problems := s.checkEffectiveDate(effectiveDate, req.Permanent, placement); len(problems) > 0 {
		return nil, pkgerrors.NewValidation(problems)
	}

	override := &model.Override{
		OverrideID:          uuid.NewString(),
		TargetPlacementID:   req.TargetPlacementID,
		ReplacementCourseID: req.ReplacementCourseID,
		EffectiveDate:       effectiveDate,
		Permanent:           req.Permanent,
		Consumed:            false,
	}
	override.CreatedBy = &callerID
	override.UpdatedBy = &callerID

	if err := s.repo.Override.Create(ctx, override); err != nil {
		s.logger.Error("创建调课记录失败", zap.Error(err))
		return nil, err
	}

	return toOverrideResponse(override), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *overrideService) GetByID(ctx context.Context, id string) (*dto.OverrideResponse, error) {
	override, err := s.repo.Override.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOverrideNotFound
		}
		s.logger.Error("查询调课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toOverrideResponse(override), nil
}

// ────────────────────── List ──────────────────────

func (s *overrideService) List(ctx context.Context) ([]dto.OverrideResponse, error) {
	overrides, err := s.repo.Override.List(ctx)
	if err != nil {
		s.logger.Error("列出调课记录失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.OverrideResponse, 0, len(overrides))
	for i := range overrides {
		result = append(result, *toOverrideResponse(&overrides[i]))
	}

	return result, nil
}

// ────────────────────── ListByPlacement ──────────────────────

func (s *overrideService) ListByPlacement(ctx context.Context, placementID string) ([]dto.OverrideResponse, error) {
	overrides, err := s.repo.Override.ListByPlacement(ctx, placementID)
	if err != nil {
		s.logger.Error("按排课列出调课记录失败", zap.String("placement_id", placementID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.OverrideResponse, 0, len(overrides))
	for i := range overrides {
		result = append(result, *toOverrideResponse(&overrides[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *overrideService) Update(ctx context.Context, id string, req *dto.UpdateOverrideRequest, callerID string) (*dto.OverrideResponse, error) {
	override, err := s.repo.Override.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOverrideNotFound
		}
		s.logger.Error("查询调课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.ReplacementCourseID != nil {
		exists, err := s.repo.Course.Exists(ctx, *req.ReplacementCourseID)
		if err != nil {
			s.logger.Error("查询课程失败", zap.String("id", *req.ReplacementCourseID), zap.Error(err))
			return nil, err
		}
		if !exists {
			return nil, ErrCourseNotFound
		}
		override.ReplacementCourseID = *req.ReplacementCourseID
		override.ReplacementCourse = nil
	}
	if req.EffectiveDate != nil {
		effectiveDate, err := time.Parse("2006-01-02", *req.EffectiveDate)
		if err != nil {
			return nil, ErrOverrideDateInvalid
		}
		override.EffectiveDate = timeutil.DateOnly(effectiveDate)
	}
	if req.Permanent != nil {
		override.Permanent = *req.Permanent
	}

	placement, err := s.repo.Placement.GetByID(ctx, override.TargetPlacementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlacementNotFound
		}
		s.logger.Error("查询排课失败", zap.String("id", override.TargetPlacementID), zap.Error(err))
		return nil, err
	}

	if problems := s.checkEffectiveDate(override.EffectiveDate, override.Permanent, placement); len(problems) > 0 {
		return nil, pkgerrors.NewValidation(problems)
	}

	override.UpdatedBy = &callerID

	if err := s.repo.Override.Update(ctx, override); err != nil {
		s.logger.Error("更新调课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toOverrideResponse(override), nil
}

// ────────────────────── 校验 ──────────────────────

// checkEffectiveDate 校验生效日期与目标排课的约束：
// 生效区间、星期一致，且一次性调课的生效日期必须落在排课
// 实际出现的单双周（否则该调课永远不会被解析命中）。
func (s *overrideService) checkEffectiveDate(effectiveDate time.Time, permanent bool, placement *model.Placement) []string {
	var problems []string
	if effectiveDate.Before(placement.ValidFrom) || effectiveDate.After(placement.ValidTo) {
		problems = append(problems, "调课生效日期不在目标排课的生效区间内")
	}
	if int(effectiveDate.Weekday()) != placement.DayOfWeek {
		problems = append(problems, "调课生效日期的星期与目标排课不一致")
	}
	if !permanent && placement.WeekParity != model.ParityBoth {
		parity := timeutil.WeekParityOf(effectiveDate, s.termStart, s.cfg.FirstWeekType)
		if parity != placement.WeekParity {
			problems = append(problems, "一次性调课生效日期的单双周与目标排课不一致")
		}
	}
	return problems
}

// ────────────────────── Delete ──────────────────────

func (s *overrideService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Override.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOverrideNotFound
		}
		s.logger.Error("查询调课记录失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Override.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除调课记录失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── 转换 ──────────────────────

func toOverrideResponse(o *model.Override) *dto.OverrideResponse {
	resp := &dto.OverrideResponse{
		ID:                  o.OverrideID,
		TargetPlacementID:   o.TargetPlacementID,
		ReplacementCourseID: o.ReplacementCourseID,
		EffectiveDate:       o.EffectiveDate.Format("2006-01-02"),
		Permanent:           o.Permanent,
		Consumed:            o.Consumed,
		CreatedAt:           o.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:           o.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if o.ReplacementCourse != nil {
		resp.ReplacementCourse = toCourseResponse(o.ReplacementCourse)
	}
	return resp
}
