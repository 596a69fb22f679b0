package repository

import (
	"context"

	"app/internal/domain/model"
)

type SupplierRepository interface {
	Create(ctx context.Context, s model.Supplier) (model.Supplier, error)
	FindByID(ctx context.Context, id int64) (model.Supplier, error)
	List(ctx context.Context, page, limit int) ([]model.Supplier, int64, error)
	Update(ctx context.Context, s model.Supplier) error
	SetActive(ctx context.Context, id int64, active bool) error
}
