package repository

import (
	"context"

	"app/internal/domain/model"
)

type CouponRepository interface {
	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	FindByID(ctx context.Context, id int64) (model.Coupon, error)
	List(ctx context.Context, page, limit int) ([]model.Coupon, int64, error)
	SetActive(ctx context.Context, id int64, active bool) error

	// 使用回数を上限の範囲内でだけ+1する。上限到達ならfalse。
	// 注文確定と同じトランザクションで呼ぶこと。
	IncrementUsageIfAvailable(ctx context.Context, id int64) (bool, error)
}
