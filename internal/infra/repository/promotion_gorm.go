package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type PromotionGormRepository struct {
	db *gorm.DB
}

func NewPromotionGormRepository(db *gorm.DB) *PromotionGormRepository {
	return &PromotionGormRepository{db: db}
}

func (r *PromotionGormRepository) Create(ctx context.Context, p model.Promotion) (model.Promotion, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Promotion{}, err
	}
	return p, nil
}

func (r *PromotionGormRepository) FindByID(ctx context.Context, id int64) (model.Promotion, error) {
	var p model.Promotion
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Promotion{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Promotion{}, err
	}
	return p, nil
}

func (r *PromotionGormRepository) List(ctx context.Context, page, limit int) ([]model.Promotion, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Promotion{}).Count(&total).Error; err != nil {
		return []model.Promotion{}, 0, err
	}

	var items []model.Promotion
	err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&items).Error
	if err != nil {
		return []model.Promotion{}, 0, err
	}
	return items, total, nil
}

func (r *PromotionGormRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Promotion{}).
		Where("id = ?", id).
		Update("is_active", active)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 対象商品の割り当てを全部入れ替える
func (r *PromotionGormRepository) AssignProducts(ctx context.Context, promotionID int64, productIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Promotion
		if err := tx.First(&p, promotionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		if err := tx.Where("promotion_id = ?", promotionID).Delete(&model.PromotionProduct{}).Error; err != nil {
			return err
		}

		if len(productIDs) == 0 {
			return nil
		}

		rows := make([]model.PromotionProduct, 0, len(productIDs))
		for _, pid := range productIDs {
			rows = append(rows, model.PromotionProduct{PromotionID: promotionID, ProductID: pid})
		}
		return tx.Create(&rows).Error
	})
}

func (r *PromotionGormRepository) ListProductIDs(ctx context.Context, promotionID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.PromotionProduct{}).
		Where("promotion_id = ?", promotionID).
		Pluck("product_id", &ids).Error
	if err != nil {
		return []int64{}, err
	}
	return ids, nil
}

// nowに有効で、productIDsのいずれかを対象に含むプロモーション
func (r *PromotionGormRepository) ListActiveForProducts(ctx context.Context, productIDs []int64, now time.Time) ([]model.Promotion, error) {
	if len(productIDs) == 0 {
		return []model.Promotion{}, nil
	}

	var promos []model.Promotion
	err := r.db.WithContext(ctx).Model(&model.Promotion{}).
		Distinct("promotions.*").
		Joins("JOIN promotion_products ON promotion_products.promotion_id = promotions.id").
		Where("promotion_products.product_id IN ?", productIDs).
		Where("promotions.is_active = ?", true).
		Where("promotions.starts_at <= ? AND promotions.ends_at >= ?", now, now).
		Find(&promos).Error
	if err != nil {
		return []model.Promotion{}, err
	}
	return promos, nil
}
