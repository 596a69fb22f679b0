package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type PromotionRepository interface {
	Create(ctx context.Context, p model.Promotion) (model.Promotion, error)
	FindByID(ctx context.Context, id int64) (model.Promotion, error)
	List(ctx context.Context, page, limit int) ([]model.Promotion, int64, error)
	SetActive(ctx context.Context, id int64, active bool) error

	// 対象商品の割り当てを置き換える
	AssignProducts(ctx context.Context, promotionID int64, productIDs []int64) error
	ListProductIDs(ctx context.Context, promotionID int64) ([]int64, error)

	// nowの時点で有効で、productIDsのいずれかを対象に含むプロモーション
	ListActiveForProducts(ctx context.Context, productIDs []int64, now time.Time) ([]model.Promotion, error)
}
