package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
	orderEvents repo.OrderEventRepository
	products    repo.ProductRepository
	inventory   repo.InventoryRepository
	coupons     repo.CouponRepository
	promotions  repo.PromotionRepository
	returns     repo.ReturnRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository           { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository   { return r.orderItems }
func (r *txReposGorm) OrderEvents() repo.OrderEventRepository { return r.orderEvents }
func (r *txReposGorm) Products() repo.ProductRepository       { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository    { return r.inventory }
func (r *txReposGorm) Coupons() repo.CouponRepository         { return r.coupons }
func (r *txReposGorm) Promotions() repo.PromotionRepository   { return r.promotions }
func (r *txReposGorm) Returns() repo.ReturnRepository         { return r.returns }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnの中のエラーで全体がロールバックされる。
// 注文確定の「在庫減算と注文作成は両方成功か両方失敗か」はここで守る。
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:      NewOrderGormRepository(tx),
			orderItems:  NewOrderItemGormRepository(tx),
			orderEvents: NewOrderEventGormRepository(tx),
			products:    NewProductGormRepository(tx),
			inventory:   NewInventoryGormRepository(tx),
			coupons:     NewCouponGormRepository(tx),
			promotions:  NewPromotionGormRepository(tx),
			returns:     NewReturnGormRepository(tx),
		}
		return fn(r)
	})
}
