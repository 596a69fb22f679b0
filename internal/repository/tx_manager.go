package repository

import "context"

// トランザクション内で使う約束。
// 注文確定（注文+明細+在庫減算+初回イベント+クーポン加算）と
// ステータス変更・返品処理はここを通して1コミットにする。
// カートはドキュメントストア側なので含まれない。
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	OrderEvents() OrderEventRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	Coupons() CouponRepository
	Promotions() PromotionRepository
	Returns() ReturnRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
