package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ReturnGormRepository struct {
	db *gorm.DB
}

func NewReturnGormRepository(db *gorm.DB) *ReturnGormRepository {
	return &ReturnGormRepository{db: db}
}

// 申請本体と明細をまとめて保存
func (r *ReturnGormRepository) Create(ctx context.Context, ret model.Return, items []model.ReturnItem) (int64, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ret).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ReturnID = ret.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return ret.ID, nil
}

func (r *ReturnGormRepository) FindByID(ctx context.Context, id int64) (model.Return, error) {
	var ret model.Return
	err := r.db.WithContext(ctx).First(&ret, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Return{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Return{}, err
	}
	return ret, nil
}

func (r *ReturnGormRepository) ListItems(ctx context.Context, returnID int64) ([]model.ReturnItem, error) {
	var items []model.ReturnItem
	err := r.db.WithContext(ctx).Where("return_id = ?", returnID).Order("id asc").Find(&items).Error
	if err != nil {
		return []model.ReturnItem{}, err
	}
	return items, nil
}

func (r *ReturnGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Return, error) {
	var rets []model.Return
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id desc").Find(&rets).Error
	if err != nil {
		return []model.Return{}, err
	}
	return rets, nil
}

func (r *ReturnGormRepository) ListAdmin(ctx context.Context, status string, page, limit int) ([]model.Return, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Return{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Return{}, 0, err
	}

	var rets []model.Return
	if err := q.Order("id desc").Limit(limit).Offset((page - 1) * limit).Find(&rets).Error; err != nil {
		return []model.Return{}, 0, err
	}
	return rets, total, nil
}

func (r *ReturnGormRepository) UpdateStatus(ctx context.Context, id int64, status model.ReturnStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Return{}).
		Where("id = ?", id).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
