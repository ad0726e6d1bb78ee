package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ziyi127/TimeNest-sub000/internal/model"
)

// RotationRepository 轮换模板数据访问接口
type RotationRepository interface {
	// Create 在事务中创建模板及其全部槽位
	Create(ctx context.Context, template *model.RotationTemplate) error
	GetByID(ctx context.Context, id string) (*model.RotationTemplate, error)
	List(ctx context.Context) ([]model.RotationTemplate, error)
	// ListActiveOn 返回 start_date <= date 的模板（含槽位）
	ListActiveOn(ctx context.Context, date time.Time) ([]model.RotationTemplate, error)
	// ReplaceSlots 在事务中更新模板字段并全量替换槽位
	ReplaceSlots(ctx context.Context, template *model.RotationTemplate, slots []model.RotationSlot) error
	Delete(ctx context.Context, id string, deletedBy string) error
	// ListSlotIDsByCourse 返回引用指定课程的槽位 ID（引用完整性检查）
	ListSlotIDsByCourse(ctx context.Context, courseID string) ([]string, error)
}

type rotationRepo struct {
	db *gorm.DB
}

// NewRotationRepo 创建 RotationRepository 实例
func NewRotationRepo(db *gorm.DB) RotationRepository {
	return &rotationRepo{db: db}
}

func (r *rotationRepo) Create(ctx context.Context, template *model.RotationTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *rotationRepo) GetByID(ctx context.Context, id string) (*model.RotationTemplate, error) {
	var template model.RotationTemplate
	err := r.db.WithContext(ctx).
		Preload("Slots").
		Preload("Slots.Course").
		First(&template, "template_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *rotationRepo) List(ctx context.Context) ([]model.RotationTemplate, error) {
	var templates []model.RotationTemplate
	err := r.db.WithContext(ctx).
		Preload("Slots").
		Order("name ASC").
		Find(&templates).Error
	return templates, err
}

func (r *rotationRepo) ListActiveOn(ctx context.Context, date time.Time) ([]model.RotationTemplate, error) {
	var templates []model.RotationTemplate
	err := r.db.WithContext(ctx).
		Preload("Slots").
		Preload("Slots.Course").
		Where("start_date <= ?", date).
		Find(&templates).Error
	return templates, err
}

func (r *rotationRepo) ReplaceSlots(ctx context.Context, template *model.RotationTemplate, slots []model.RotationSlot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(template).Error; err != nil {
			return err
		}
		// 硬删除旧槽位后重建（槽位属于模板聚合，无需软删除审计）
		if err := tx.Unscoped().
			Where("template_id = ?", template.TemplateID).
			Delete(&model.RotationSlot{}).Error; err != nil {
			return err
		}
		if len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *rotationRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("template_id = ?", id).
			Delete(&model.RotationSlot{}).Error; err != nil {
			return err
		}
		return tx.Model(&model.RotationTemplate{}).
			Where("template_id = ?", id).
			Updates(map[string]interface{}{
				"deleted_by": deletedBy,
				"deleted_at": gorm.Expr("NOW()"),
			}).Error
	})
}

func (r *rotationRepo) ListSlotIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.RotationSlot{}).
		Where("course_id = ?", courseID).
		Pluck("slot_id", &ids).Error
	return ids, err
}
