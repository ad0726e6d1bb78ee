package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ziyi127/TimeNest-sub000/internal/model"
)

// OverrideRepository 调课记录数据访问接口
type OverrideRepository interface {
	Create(ctx context.Context, override *model.Override) error
	GetByID(ctx context.Context, id string) (*model.Override, error)
	List(ctx context.Context) ([]model.Override, error)
	ListByPlacement(ctx context.Context, placementID string) ([]model.Override, error)
	// ListOneOffByDate 返回指定日期未消费的一次性调课
	ListOneOffByDate(ctx context.Context, date time.Time) ([]model.Override, error)
	// ListPermanentOnOrBefore 返回 effective_date <= date 的永久调课
	ListPermanentOnOrBefore(ctx context.Context, date time.Time) ([]model.Override, error)
	Update(ctx context.Context, override *model.Override) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// MarkConsumed 批量置 consumed（解析消费一次性调课时调用）
	MarkConsumed(ctx context.Context, ids []string) error
	// ListIDsByReplacementCourse 返回以指定课程为替换课程的调课 ID
	ListIDsByReplacementCourse(ctx context.Context, courseID string) ([]string, error)
	// ListIDsByPlacement 返回指向指定排课的调课 ID
	ListIDsByPlacement(ctx context.Context, placementID string) ([]string, error)
}

type overrideRepo struct {
	db *gorm.DB
}

// NewOverrideRepo 创建 OverrideRepository 实例
func NewOverrideRepo(db *gorm.DB) OverrideRepository {
	return &overrideRepo{db: db}
}

func (r *overrideRepo) Create(ctx context.Context, override *model.Override) error {
	return r.db.WithContext(ctx).Create(override).Error
}

func (r *overrideRepo) GetByID(ctx context.Context, id string) (*model.Override, error) {
	var override model.Override
	err := r.db.WithContext(ctx).
		Preload("ReplacementCourse").
		First(&override, "override_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *overrideRepo) List(ctx context.Context) ([]model.Override, error) {
	var overrides []model.Override
	err := r.db.WithContext(ctx).
		Preload("ReplacementCourse").
		Order("effective_date ASC").
		Find(&overrides).Error
	return overrides, err
}

func (r *overrideRepo) ListByPlacement(ctx context.Context, placementID string) ([]model.Override, error) {
	var overrides []model.Override
	err := r.db.WithContext(ctx).
		Preload("ReplacementCourse").
		Where("target_placement_id = ?", placementID).
		Order("effective_date ASC").
		Find(&overrides).Error
	return overrides, err
}

func (r *overrideRepo) ListOneOffByDate(ctx context.Context, date time.Time) ([]model.Override, error) {
	var overrides []model.Override
	err := r.db.WithContext(ctx).
		Preload("ReplacementCourse").
		Where("permanent = FALSE AND consumed = FALSE AND effective_date = ?", date).
		Find(&overrides).Error
	return overrides, err
}

func (r *overrideRepo) ListPermanentOnOrBefore(ctx context.Context, date time.Time) ([]model.Override, error) {
	var overrides []model.Override
	err := r.db.WithContext(ctx).
		Preload("ReplacementCourse").
		Where("permanent = TRUE AND effective_date <= ?", date).
		Order("effective_date ASC").
		Find(&overrides).Error
	return overrides, err
}

func (r *overrideRepo) Update(ctx context.Context, override *model.Override) error {
	return r.db.WithContext(ctx).Save(override).Error
}

func (r *overrideRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Override{}).
		Where("override_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *overrideRepo) MarkConsumed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Override{}).
		Where("override_id IN ?", ids).
		Update("consumed", true).Error
}

func (r *overrideRepo) ListIDsByReplacementCourse(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Override{}).
		Where("replacement_course_id = ?", courseID).
		Pluck("override_id", &ids).Error
	return ids, err
}

func (r *overrideRepo) ListIDsByPlacement(ctx context.Context, placementID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Override{}).
		Where("target_placement_id = ?", placementID).
		Pluck("override_id", &ids).Error
	return ids, err
}
