package repository

import (
	"context"

	"app/internal/domain/model"
)

// 車両カタログと適合検索
type VehicleRepository interface {
	ListBrands(ctx context.Context) ([]model.VehicleBrand, error)
	ListModelsByBrand(ctx context.Context, brandID int64) ([]model.VehicleModel, error)

	//指定車種×年式に適合する公開商品
	ListCompatibleProducts(ctx context.Context, modelID int64, year int) ([]model.Product, error)

	//商品への適合割り当て（管理者）
	AssignFitments(ctx context.Context, productID int64, fitments []model.ProductFitment) error
}
