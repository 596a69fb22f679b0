package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type VehicleGormRepository struct {
	db *gorm.DB
}

func NewVehicleGormRepository(db *gorm.DB) *VehicleGormRepository {
	return &VehicleGormRepository{db: db}
}

func (r *VehicleGormRepository) ListBrands(ctx context.Context) ([]model.VehicleBrand, error) {
	var brands []model.VehicleBrand
	err := r.db.WithContext(ctx).Order("name asc").Find(&brands).Error
	if err != nil {
		return []model.VehicleBrand{}, err
	}
	return brands, nil
}

func (r *VehicleGormRepository) ListModelsByBrand(ctx context.Context, brandID int64) ([]model.VehicleModel, error) {
	var models []model.VehicleModel
	err := r.db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("name asc").
		Find(&models).Error
	if err != nil {
		return []model.VehicleModel{}, err
	}
	return models, nil
}

// 車種×年式に適合する公開商品
func (r *VehicleGormRepository) ListCompatibleProducts(ctx context.Context, modelID int64, year int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Joins("JOIN product_fitments ON product_fitments.product_id = products.id").
		Where("product_fitments.vehicle_model_id = ?", modelID).
		Where("product_fitments.year_from <= ? AND product_fitments.year_to >= ?", year, year).
		Where("products.is_active = ?", true).
		Order("products.price asc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 商品の適合を全部入れ替える
func (r *VehicleGormRepository) AssignFitments(ctx context.Context, productID int64, fitments []model.ProductFitment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Product
		if err := tx.First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductFitment{}).Error; err != nil {
			return err
		}

		if len(fitments) == 0 {
			return nil
		}
		for i := range fitments {
			fitments[i].ProductID = productID
		}
		return tx.Create(&fitments).Error
	})
}
