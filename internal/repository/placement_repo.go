package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ziyi127/TimeNest-sub000/internal/model"
)

// PlacementRepository 周期排课数据访问接口
type PlacementRepository interface {
	Create(ctx context.Context, placement *model.Placement) error
	GetByID(ctx context.Context, id string) (*model.Placement, error)
	// List 返回全部排课（预加载课程）；冲突检测需要全量扫描
	List(ctx context.Context) ([]model.Placement, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Placement, error)
	// ListByDay 返回指定星期且生效区间覆盖 date 的排课
	ListByDay(ctx context.Context, dayOfWeek int, date time.Time) ([]model.Placement, error)
	Update(ctx context.Context, placement *model.Placement) error
	Delete(ctx context.Context, id string, deletedBy string) error
	Exists(ctx context.Context, id string) (bool, error)
	// ListIDsByCourse 返回引用指定课程的排课 ID（引用完整性检查）
	ListIDsByCourse(ctx context.Context, courseID string) ([]string, error)
}

type placementRepo struct {
	db *gorm.DB
}

// NewPlacementRepo 创建 PlacementRepository 实例
func NewPlacementRepo(db *gorm.DB) PlacementRepository {
	return &placementRepo{db: db}
}

func (r *placementRepo) Create(ctx context.Context, placement *model.Placement) error {
	return r.db.WithContext(ctx).Create(placement).Error
}

func (r *placementRepo) GetByID(ctx context.Context, id string) (*model.Placement, error) {
	var placement model.Placement
	err := r.db.WithContext(ctx).
		Preload("Course").
		First(&placement, "placement_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &placement, nil
}

func (r *placementRepo) List(ctx context.Context) ([]model.Placement, error) {
	var placements []model.Placement
	err := r.db.WithContext(ctx).
		Preload("Course").
		Order("day_of_week ASC, valid_from ASC").
		Find(&placements).Error
	return placements, err
}

func (r *placementRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Placement, error) {
	var placements []model.Placement
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id = ?", courseID).
		Order("day_of_week ASC").
		Find(&placements).Error
	return placements, err
}

func (r *placementRepo) ListByDay(ctx context.Context, dayOfWeek int, date time.Time) ([]model.Placement, error) {
	var placements []model.Placement
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("day_of_week = ? AND valid_from <= ? AND valid_to >= ?", dayOfWeek, date, date).
		Find(&placements).Error
	return placements, err
}

func (r *placementRepo) Update(ctx context.Context, placement *model.Placement) error {
	return r.db.WithContext(ctx).Save(placement).Error
}

func (r *placementRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Placement{}).
		Where("placement_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *placementRepo) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Placement{}).
		Where("placement_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *placementRepo) ListIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Placement{}).
		Where("course_id = ?", courseID).
		Pluck("placement_id", &ids).Error
	return ids, err
}
